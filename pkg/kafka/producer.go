// Package kafka 提供 Kafka 消息发布
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer 消息发布接口
type Producer interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// Config 生产者配置
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Writer 基于 kafka-go 的生产者
type Writer struct {
	writer *kafka.Writer
	topic  string
}

// NewWriter 创建生产者
func NewWriter(cfg *Config) *Writer {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Writer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			WriteTimeout:           timeout,
			AllowAutoTopicCreation: true,
		},
		topic: cfg.Topic,
	}
}

// Topic 返回写入的主题
func (w *Writer) Topic() string {
	return w.topic
}

// Publish 发布一条 JSON 消息，同一 key 的消息进入同一分区
func (w *Writer) Publish(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("写入 kafka 失败: %w", err)
	}
	return nil
}

// Close 关闭生产者
func (w *Writer) Close() error {
	return w.writer.Close()
}

// Message 已发布的消息（测试用）
type Message struct {
	Key   string
	Value []byte
}

// MockProducer 模拟生产者
type MockProducer struct {
	mu       sync.Mutex
	Messages []Message
	// Err 非空时 Publish 返回该错误
	Err    error
	closed bool
}

// NewMockProducer 创建模拟生产者
func NewMockProducer() *MockProducer {
	return &MockProducer{}
}

// Publish 记录消息
func (p *MockProducer) Publish(ctx context.Context, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	p.Messages = append(p.Messages, Message{Key: key, Value: data})
	return nil
}

// Count 已发布条数
func (p *MockProducer) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Messages)
}

// Last 最后一条消息
func (p *MockProducer) Last() *Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Messages) == 0 {
		return nil
	}
	m := p.Messages[len(p.Messages)-1]
	return &m
}

// Close 关闭
func (p *MockProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Closed 是否已关闭
func (p *MockProducer) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
