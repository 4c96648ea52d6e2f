// Package oss 房间图片对象存储
package oss

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// Uploader 上传器接口
type Uploader interface {
	Upload(ctx context.Context, objectKey, contentType string, reader io.Reader) (string, error)
	Delete(ctx context.Context, objectKey string) error
}

// AliyunConfig 阿里云 OSS 配置
type AliyunConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
	Domain          string // 自定义域名（可选）
}

// AliyunUploader 阿里云 OSS 上传器
type AliyunUploader struct {
	bucket *oss.Bucket
	config *AliyunConfig
}

// NewAliyunUploader 创建阿里云 OSS 上传器
func NewAliyunUploader(config *AliyunConfig) (*AliyunUploader, error) {
	client, err := oss.New(config.Endpoint, config.AccessKeyID, config.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("创建 OSS 客户端失败: %w", err)
	}

	bucket, err := client.Bucket(config.BucketName)
	if err != nil {
		return nil, fmt.Errorf("获取 Bucket 失败: %w", err)
	}

	return &AliyunUploader{bucket: bucket, config: config}, nil
}

// Upload 上传对象，返回公开访问地址
func (u *AliyunUploader) Upload(ctx context.Context, objectKey, contentType string, reader io.Reader) (string, error) {
	opts := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if err := u.bucket.PutObject(objectKey, reader, opts...); err != nil {
		return "", fmt.Errorf("上传文件失败: %w", err)
	}
	return u.URL(objectKey), nil
}

// Delete 删除对象
func (u *AliyunUploader) Delete(ctx context.Context, objectKey string) error {
	return u.bucket.DeleteObject(objectKey, oss.WithContext(ctx))
}

// URL 对象访问地址
func (u *AliyunUploader) URL(objectKey string) string {
	if u.config.Domain != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(u.config.Domain, "/"), objectKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", u.config.BucketName, u.config.Endpoint, objectKey)
}

// ObjectKey 生成对象键：dir/房间ID/年月/uuid.ext
func ObjectKey(dir string, roomID int64, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(dir, fmt.Sprintf("%d", roomID), now.Format("200601"), uuid.NewString()+ext)
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// SniffImage 校验扩展名与文件头，返回内容类型和可重新读取的完整内容
func SniffImage(filename string, size, maxSize int64, reader io.Reader) (string, io.Reader, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !imageExts[ext] {
		return "", nil, fmt.Errorf("不支持的图片格式: %s", ext)
	}
	if maxSize > 0 && size > maxSize {
		return "", nil, fmt.Errorf("图片超过 %d 字节", maxSize)
	}

	header := make([]byte, 512)
	n, err := io.ReadFull(reader, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, fmt.Errorf("读取文件失败: %w", err)
	}
	header = header[:n]

	contentType := http.DetectContentType(header)
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, fmt.Errorf("文件不是有效的图片")
	}
	return contentType, io.MultiReader(bytes.NewReader(header), reader), nil
}

// MockUploader 内存上传器（开发/测试）
type MockUploader struct {
	mu    sync.Mutex
	Files map[string][]byte
	Err   error
}

// NewMockUploader 创建内存上传器
func NewMockUploader() *MockUploader {
	return &MockUploader{Files: make(map[string][]byte)}
}

// Upload 保存到内存
func (u *MockUploader) Upload(ctx context.Context, objectKey, contentType string, reader io.Reader) (string, error) {
	if u.Err != nil {
		return "", u.Err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Files[objectKey] = data
	return "https://mock-oss.example.com/" + objectKey, nil
}

// Delete 从内存删除
func (u *MockUploader) Delete(ctx context.Context, objectKey string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.Files, objectKey)
	return nil
}

// Count 已保存对象数
func (u *MockUploader) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.Files)
}
