package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/realcpa-hub/internal/config"
	"github.com/realcpa-hub/internal/logger"

	"github.com/segmentio/kafka-go"
)

const (
	publishTimeout       = 5 * time.Second
	maxInflightPublishes = 64
)

// Envelope 领域事件统一封装
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Publisher 领域事件发布接口
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
	Close() error
}

// NoopPublisher 未启用 Kafka 时使用
type NoopPublisher struct{}

// Publish 丢弃事件
func (NoopPublisher) Publish(context.Context, string, []byte, string) error { return nil }

// Close 无操作
func (NoopPublisher) Close() error { return nil }

// messageWriter kafka.Writer 的最小抽象，便于测试替换
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// backgroundRunner 由发布器托管的后台发布任务
type backgroundRunner interface {
	Go(task func()) bool
}

// KafkaPublisher 基于 kafka-go 的发布实现
type KafkaPublisher struct {
	writer       messageWriter
	topicByEvent map[string]string

	mu       sync.Mutex
	closed   bool
	slots    chan struct{}
	inflight sync.WaitGroup
}

func newKafkaPublisher(writer messageWriter, topicByEvent map[string]string) *KafkaPublisher {
	return &KafkaPublisher{
		writer:       writer,
		topicByEvent: topicByEvent,
		slots:        make(chan struct{}, maxInflightPublishes),
	}
}

// NewKafkaPublisher 创建 Kafka 发布器
func NewKafkaPublisher(brokers []string, topicByEvent map[string]string) (*KafkaPublisher, error) {
	cleaned := make([]string, 0, len(brokers))
	for _, broker := range brokers {
		if trimmed := strings.TrimSpace(broker); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(cleaned...),
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.Hash{},
	}, topicByEvent), nil
}

// Publish 写入一条消息，topic 按事件类型映射，未配置时使用事件类型本身
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topicFor(eventType),
		Key:   []byte(partitionKey),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (p *KafkaPublisher) topicFor(eventType string) string {
	if mapped, ok := p.topicByEvent[eventType]; ok && strings.TrimSpace(mapped) != "" {
		return strings.TrimSpace(mapped)
	}
	return eventType
}

// Go 在后台执行发布任务；已关闭或在途任务已满时拒绝
func (p *KafkaPublisher) Go(task func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.slots <- struct{}{}:
	default:
		return false
	}
	p.inflight.Add(1)
	go func() {
		defer func() {
			<-p.slots
			p.inflight.Done()
		}()
		task()
	}()
	return true
}

// Close 拒绝新任务，等待在途发布结束后关闭 writer
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.inflight.Wait()
	return p.writer.Close()
}

// New 按配置创建发布器，未启用时返回 NoopPublisher
func New(cfg config.KafkaConfig) (Publisher, error) {
	if !cfg.Enabled {
		return NoopPublisher{}, nil
	}
	return NewKafkaPublisher(cfg.Brokers, cfg.Topics)
}

// Emit 异步发布领域事件，失败或被拒绝只记录日志，不影响调用方。
// 发布器不支持后台任务时同步发布
func Emit(publisher Publisher, eventType, partitionKey string, data interface{}) {
	if publisher == nil {
		return
	}
	if _, ok := publisher.(NoopPublisher); ok {
		return
	}
	payload, err := json.Marshal(Envelope{Type: eventType, OccurredAt: time.Now().UTC(), Data: data})
	if err != nil {
		logger.Warnw("domain_event_marshal_failed", "event_type", eventType, "error", err)
		return
	}
	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := publisher.Publish(ctx, eventType, payload, partitionKey); err != nil {
			logger.Warnw("domain_event_publish_failed",
				"event_type", eventType,
				"key", partitionKey,
				"error", err,
			)
		}
	}
	runner, ok := publisher.(backgroundRunner)
	if !ok {
		task()
		return
	}
	if !runner.Go(task) {
		logger.Warnw("domain_event_dropped", "event_type", eventType, "key", partitionKey)
	}
}
