// Package mqtt 提供 MQTT 客户端封装
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Config MQTT 配置
type Config struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	KeepAlive      int // 秒
	AutoReconnect  bool
	ConnectTimeout int // 秒
	QoS            byte
}

// Client MQTT 客户端
type Client struct {
	config *Config
	client mqtt.Client
	log    *zap.Logger
}

// NewClient 创建 MQTT 客户端，log 为 nil 时不输出日志
func NewClient(config *Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{config: config, log: log.Named("mqtt")}
	c.client = mqtt.NewClient(c.options())
	return c
}

func (c *Client) options() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(time.Duration(c.config.KeepAlive) * time.Second)
	opts.SetAutoReconnect(c.config.AutoReconnect)
	opts.SetConnectTimeout(time.Duration(c.config.ConnectTimeout) * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		c.log.Info("已连接 MQTT Broker", zap.String("broker", c.config.Broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.log.Warn("MQTT 连接断开", zap.Error(err))
	})
	opts.SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
		c.log.Info("MQTT 重连中")
	})
	return opts
}

// Connect 连接 MQTT Broker
func (c *Client) Connect() error {
	token := c.client.Connect()
	if !c.wait(token) {
		return fmt.Errorf("mqtt connect timeout: %s", c.config.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect error: %w", err)
	}
	return nil
}

func (c *Client) wait(token mqtt.Token) bool {
	if c.config.ConnectTimeout <= 0 {
		return token.Wait()
	}
	return token.WaitTimeout(time.Duration(c.config.ConnectTimeout) * time.Second)
}

// Disconnect 断开连接
func (c *Client) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
		c.log.Info("已断开 MQTT Broker")
	}
}

// IsConnected 检查是否已连接
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Encode 将负载转为字节，[]byte 和 string 原样发送，其余按 JSON 编码
func Encode(payload interface{}) ([]byte, error) {
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("mqtt marshal payload error: %w", err)
		}
		return data, nil
	}
}

// Publish 发布消息
func (c *Client) Publish(ctx context.Context, topic string, payload interface{}) error {
	return c.publish(ctx, topic, false, payload)
}

// PublishRetained 发布保留消息，新订阅方连上即可收到最新一条
func (c *Client) PublishRetained(ctx context.Context, topic string, payload interface{}) error {
	return c.publish(ctx, topic, true, payload)
}

func (c *Client) publish(ctx context.Context, topic string, retained bool, payload interface{}) error {
	data, err := Encode(payload)
	if err != nil {
		return err
	}
	if !c.IsConnected() {
		return fmt.Errorf("mqtt not connected")
	}

	token := c.client.Publish(topic, c.config.QoS, retained, data)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish error: %w", err)
		}
		return nil
	}
}
