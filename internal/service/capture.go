package service

import (
	"context"
	"errors"

	"github.com/paygate-next/internal/models"
)

// ErrCaptureDeclined 渠道拒绝扣款
var ErrCaptureDeclined = errors.New("capture declined")

// Capturer 支付渠道扣款边界：返回 nil 表示成功，任何错误都视为失败且不重试
type Capturer interface {
	Capture(ctx context.Context, account *models.PaymentAccount, txn *models.Transaction) error
}

// CaptureFunc 函数式 Capturer
type CaptureFunc func(ctx context.Context, account *models.PaymentAccount, txn *models.Transaction) error

// Capture 实现 Capturer
func (f CaptureFunc) Capture(ctx context.Context, account *models.PaymentAccount, txn *models.Transaction) error {
	return f(ctx, account, txn)
}

// SimulatedCapturer 模拟渠道：Decline 为 true 时全部拒绝
type SimulatedCapturer struct {
	Decline bool
}

// NewSimulatedCapturer 按配置的 capture_mode 创建模拟渠道
func NewSimulatedCapturer(mode string) SimulatedCapturer {
	return SimulatedCapturer{Decline: mode == "decline"}
}

// Capture 实现 Capturer
func (c SimulatedCapturer) Capture(ctx context.Context, _ *models.PaymentAccount, _ *models.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.Decline {
		return ErrCaptureDeclined
	}
	return nil
}
