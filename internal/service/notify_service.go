package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"retail_price_v1_202608/internal/repository"
)

// ==================== NotifyService 变动推送服务 ====================

// NotifyService 把每日价格变动流水推给下游 webhook（报表前端/告警通道）
// 未配置 URL 时整体为 no-op
type NotifyService struct {
	client     *resty.Client
	webhookURL string
}

// NewNotifyService 创建推送服务
func NewNotifyService(webhookURL string) *NotifyService {
	client := resty.New()
	// 设置超时和重试，防止网络波动
	client.SetTimeout(10 * time.Second)
	client.SetRetryCount(3)

	return &NotifyService{
		client:     client,
		webhookURL: webhookURL,
	}
}

// Enabled 是否配置了下游地址
func (s *NotifyService) Enabled() bool {
	return s.webhookURL != ""
}

// changeFeedPayload 推送报文
type changeFeedPayload struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Count       int                    `json:"count"`
	Changes     []repository.ChangeRow `json:"changes"`
}

// SendChangeFeed 推送一批价格变动
func (s *NotifyService) SendChangeFeed(ctx context.Context, changes []repository.ChangeRow) error {
	if !s.Enabled() {
		return nil
	}
	if len(changes) == 0 {
		log.Println("[Notify] 无价格变动，跳过推送")
		return nil
	}

	payload := changeFeedPayload{
		GeneratedAt: time.Now(),
		Count:       len(changes),
		Changes:     changes,
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(s.webhookURL)
	if err != nil {
		return err
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook 返回 %d: %s", resp.StatusCode(), resp.String())
	}

	log.Printf("[Notify] 已推送 %d 条价格变动", len(changes))
	return nil
}
