// Package qrcode 生成预订确认二维码
package qrcode

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// RecoveryLevel 纠错级别
type RecoveryLevel = qrcode.RecoveryLevel

const (
	RecoveryLow     = qrcode.Low
	RecoveryMedium  = qrcode.Medium
	RecoveryHigh    = qrcode.High
	RecoveryHighest = qrcode.Highest
)

// Generator 二维码生成器
type Generator struct {
	size          int
	recoveryLevel RecoveryLevel
	border        bool
}

// Option 生成器选项
type Option func(*Generator)

// WithSize 设置边长（像素）
func WithSize(size int) Option {
	return func(g *Generator) {
		if size > 0 {
			g.size = size
		}
	}
}

// WithRecoveryLevel 设置纠错级别
func WithRecoveryLevel(level RecoveryLevel) Option {
	return func(g *Generator) {
		g.recoveryLevel = level
	}
}

// WithoutBorder 去掉静区，嵌入票据时使用
func WithoutBorder() Option {
	return func(g *Generator) {
		g.border = false
	}
}

// NewGenerator 创建二维码生成器，默认 256px 中等纠错
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{size: 256, recoveryLevel: RecoveryMedium, border: true}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GeneratePNG 生成 PNG
func (g *Generator) GeneratePNG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qrcode content is empty")
	}
	qr, err := qrcode.New(content, g.recoveryLevel)
	if err != nil {
		return nil, fmt.Errorf("创建二维码失败: %w", err)
	}
	qr.DisableBorder = !g.border
	return qr.PNG(g.size)
}

// GenerateDataURL 生成 data:image/png;base64 格式，供 JSON 接口内嵌
func (g *Generator) GenerateDataURL(content string) (string, error) {
	data, err := g.GeneratePNG(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}
