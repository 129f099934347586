package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	tele "gopkg.in/telebot.v3"

	"greenloop/internal/datastore/redis_store"
	"greenloop/internal/models"
)

// ServiceNotifier fans a notification out to the Telegram admin channel and
// the configured webhook. Sends are deduplicated by payload key and always
// best-effort.
type ServiceNotifier struct {
	redisDB       redis.UniversalClient
	serviceConfig *ServiceConfig
	httpClient    *httpclient.Client
	botToken      string
}

func NewServiceNotifier(container *do.Injector, botToken string) (*ServiceNotifier, error) {
	db, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(10*time.Second),
		httpclient.WithRetryCount(2),
	)

	return &ServiceNotifier{db, serviceConfig, client, botToken}, nil
}

func (service *ServiceNotifier) Notify(ctx context.Context, kind string, payload *models.NotificationPayload) error {
	if payload.DedupKey != "" {
		fresh, err := redis_store.MarkNotificationSent(ctx, service.redisDB, payload.DedupKey, NOTIFY_DEDUP_TTL)
		if err != nil {
			return err
		}
		if !fresh {
			return nil
		}
	}

	text := renderNotification(kind, payload)

	if err := service.sendTelegram(ctx, text); err != nil {
		log.Println("notify telegram:", err)
	}

	if err := service.sendWebhook(ctx, kind, payload); err != nil {
		log.Println("notify webhook:", err)
	}

	return nil
}

func (service *ServiceNotifier) sendTelegram(ctx context.Context, text string) error {
	if service.botToken == "" {
		return nil
	}

	chatIDStr, err := service.serviceConfig.GetStringConfig(ctx, CONFIG_ADMIN_CHAT_ID, "")
	if err != nil || chatIDStr == "" {
		return err
	}

	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return err
	}

	pref := tele.Settings{
		Token:  service.botToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return err
	}

	_, err = b.Send(&tele.User{ID: chatID}, text, &tele.SendOptions{
		ParseMode: tele.ModeHTML,
	})
	return err
}

func (service *ServiceNotifier) sendWebhook(ctx context.Context, kind string, payload *models.NotificationPayload) error {
	url, err := service.serviceConfig.GetStringConfig(ctx, CONFIG_NOTIFY_WEBHOOK_URL, "")
	if err != nil || url == "" {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"kind":    kind,
		"payload": payload,
	})
	if err != nil {
		return err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	res, err := service.httpClient.Post(url, bytes.NewReader(body), headers)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return fmt.Errorf("webhook responded %d", res.StatusCode)
	}

	return nil
}

func renderNotification(kind string, payload *models.NotificationPayload) string {
	switch kind {
	case models.NOTIFY_ACTION_REJECTED:
		return fmt.Sprintf("❌ Action log rejected\n%s (%s)\nAction: %s\nReason: %s", payload.UserName, payload.UserEmail, payload.ActionTitle, payload.Reason)
	case models.NOTIFY_REWARD_CLAIMED:
		return fmt.Sprintf("🎉 Claim received\nHi %s, your claim for %s (level %d) is pending review. We will let you know once it is processed.", payload.UserName, payload.RewardTitle, payload.Level)
	case models.NOTIFY_CLAIM_ALERT:
		return fmt.Sprintf("🎁 New reward claim\n%s (%s)\nReward: %s (level %d)", payload.UserName, payload.UserEmail, payload.RewardTitle, payload.Level)
	case models.NOTIFY_REWARD_APPROVED:
		return fmt.Sprintf("✅ Reward claim approved\n%s (%s)\nReward: %s", payload.UserName, payload.UserEmail, payload.RewardTitle)
	case models.NOTIFY_REWARD_REJECTED:
		return fmt.Sprintf("❌ Reward claim rejected\n%s (%s)\nReward: %s\nReason: %s", payload.UserName, payload.UserEmail, payload.RewardTitle, payload.Reason)
	case models.NOTIFY_REWARD_DELIVERED:
		return fmt.Sprintf("📦 Reward delivered\n%s (%s)\nReward: %s", payload.UserName, payload.UserEmail, payload.RewardTitle)
	default:
		return fmt.Sprintf("ℹ️ %s\n%s (%s)", kind, payload.UserName, payload.UserEmail)
	}
}
