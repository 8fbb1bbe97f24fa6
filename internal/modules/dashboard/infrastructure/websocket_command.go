package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"marketDash/internal/modules/dashboard/domain"
)

// Command is a client request received over the websocket.
type Command struct {
	Action   string          `json:"action"`
	Resource string          `json:"resource,omitempty"`
	Topic    string          `json:"topic,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

func (c Command) actionKey() string {
	return normalizeAction(c.Action)
}

type CommandHandler func(ctx context.Context, client *Client, cmd Command)

type CommandProcessor struct {
	hub      *Hub
	handlers map[string]CommandHandler
	async    map[string]time.Duration
}

func NewCommandProcessor(hub *Hub) *CommandProcessor {
	processor := &CommandProcessor{
		hub:      hub,
		handlers: make(map[string]CommandHandler),
		async:    make(map[string]time.Duration),
	}
	processor.Register("subscribe", processor.handleSubscribe)
	processor.Register("unsubscribe", processor.handleUnsubscribe)
	processor.Register("ping", processor.handlePing)
	return processor
}

// Register binds a handler that runs on the read loop, in arrival order.
func (p *CommandProcessor) Register(action string, handler CommandHandler) {
	if handler == nil {
		return
	}
	key := normalizeAction(action)
	if key == "" {
		return
	}
	p.handlers[key] = handler
	delete(p.async, key)
}

// RegisterAsync binds a handler that runs in its own goroutine bounded by timeout, so a slow
// fetch does not block later commands.
func (p *CommandProcessor) RegisterAsync(action string, timeout time.Duration, handler CommandHandler) {
	p.Register(action, handler)
	key := normalizeAction(action)
	if _, ok := p.handlers[key]; ok {
		p.async[key] = timeout
	}
}

func (p *CommandProcessor) Process(client *Client, cmd Command) {
	if client == nil {
		return
	}

	action := cmd.actionKey()
	if action == "" {
		return
	}

	handler, ok := p.handlers[action]
	if !ok {
		slog.Debug("ws command ignored", slog.String("sessionId", client.sessionID), slog.String("action", action))
		client.SendDomainMessage(domain.BuildErrorMessage("", "unknown action "+action, time.Now()))
		return
	}

	timeout, async := p.async[action]
	if !async {
		handler(context.Background(), client, cmd)
		return
	}

	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	go func() {
		defer cancel()
		handler(ctx, client, cmd)
	}()
}

func (p *CommandProcessor) handleSubscribe(_ context.Context, client *Client, cmd Command) {
	topic := strings.TrimSpace(cmd.Topic)
	if topic == "" {
		slog.Debug("ws subscribe ignored empty topic", slog.String("sessionId", client.sessionID))
		return
	}
	p.hub.subscribe(client, topic)
	slog.Debug("ws subscribe", slog.String("sessionId", client.sessionID), slog.String("topic", topic))
}

func (p *CommandProcessor) handleUnsubscribe(_ context.Context, client *Client, cmd Command) {
	topic := strings.TrimSpace(cmd.Topic)
	if topic == "" {
		return
	}
	p.hub.unsubscribe(client, topic)
}

func (p *CommandProcessor) handlePing(_ context.Context, client *Client, _ Command) {
	ack := domain.Message{
		Topic:     domain.TopicSystemPong,
		Entity:    domain.SystemEntity,
		Action:    domain.ActionPong,
		Timestamp: time.Now().UTC(),
	}
	client.SendDomainMessage(&ack)
}

// normalizeAction folds case and word separators so applyFilters, apply_filters and
// apply-filters share a handler.
func normalizeAction(action string) string {
	lowered := strings.ToLower(strings.TrimSpace(action))
	return strings.NewReplacer("_", "", "-", "").Replace(lowered)
}
