package queue

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/paygate-next/internal/config"
	"github.com/paygate-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 交易事件推送队列
	CriticalQueue = constants.QueueCritical
)

const (
	defaultMaxRetry    = 8
	defaultConcurrency = 10
)

// Client 投递异步任务；队列未启用时所有投递静默跳过
type Client struct {
	inner        *asynq.Client
	webhookQueue string
	maxRetry     int
}

// NewClient 创建队列客户端；配置的队列里没有 critical 时 webhook 改投 default
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	c := &Client{webhookQueue: CriticalQueue, maxRetry: defaultMaxRetry}
	if cfg == nil || !cfg.Enabled {
		return c, nil
	}
	if cfg.MaxRetry > 0 {
		c.maxRetry = cfg.MaxRetry
	}
	if _, ok := cfg.Queues[CriticalQueue]; !ok && len(cfg.Queues) > 0 {
		c.webhookQueue = DefaultQueue
	}
	c.inner = asynq.NewClient(redisClientOpt(cfg))
	return c, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

// EnqueueTransactionWebhook 投递交易事件推送；同一交易同一事件只排队一次
func (c *Client) EnqueueTransactionWebhook(ctx context.Context, payload TransactionWebhookPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewTransactionWebhookTask(payload)
	if err != nil {
		return err
	}
	options := []asynq.Option{
		asynq.Queue(c.webhookQueue),
		asynq.MaxRetry(c.maxRetry),
		asynq.TaskID(payload.dedupeID()),
	}
	_, err = c.inner.EnqueueContext(ctx, task, append(options, opts...)...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// NotifyTransaction 账本提交后的事件通知入口
func (c *Client) NotifyTransaction(ctx context.Context, tenantID uint, transactionID, event string) error {
	return c.EnqueueTransactionWebhook(ctx, TransactionWebhookPayload{
		TenantID:      tenantID,
		TransactionID: transactionID,
		Event:         event,
	})
}

// BuildServerConfig 消费端配置：默认并发 10，critical:default 权重 6:3
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{CriticalQueue: 6, DefaultQueue: 3},
	}
	if cfg != nil && cfg.Concurrency > 0 {
		serverCfg.Concurrency = cfg.Concurrency
	}
	if cfg != nil && len(cfg.Queues) > 0 {
		serverCfg.Queues = cfg.Queues
	}
	return redisClientOpt(cfg), serverCfg
}

func redisClientOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host, port := strings.TrimSpace(cfg.Host), cfg.Port
	if host == "" {
		host = "127.0.0.1"
	}
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
