package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/shlex"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Javohir11011/Hisob-kitob-bot/service"
)

func (b *Bot) ListenAndServe(ctx context.Context) error {
	for i := range b.updates {
		go b.updateWorker(ctx, b.updates[i])
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/bootstrap-admin", func(w http.ResponseWriter, r *http.Request) {
		if err := b.handleBootstrapAdmin(ctx, r, w); err != nil {
			log.Printf("handleBootstrapAdmin: %v", err)
		}
	}).Methods(http.MethodPost)

	if b.cfg.WebhookURL != "" {
		if err := b.setupWebhook(router); err != nil {
			return err
		}
	} else {
		go b.poll(ctx)
	}

	log.Println("Server listening on port", b.cfg.Port)
	return http.ListenAndServe(fmt.Sprintf(":%d", b.cfg.Port), router)
}

func (b *Bot) setupWebhook(router *mux.Router) error {
	wh, err := tgbotapi.NewWebhook(strings.TrimSuffix(b.cfg.WebhookURL, "/") + "/webhook")
	if err != nil {
		return fmt.Errorf("building webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("registering webhook: %w", err)
	}

	router.HandleFunc("/webhook", func(w http.ResponseWriter, r *http.Request) {
		update, err := b.api.HandleUpdate(r)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.enqueue(*update)
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPost)

	return nil
}

func (b *Bot) poll(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollTimeout

	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.enqueue(update)
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		}
	}
}

// enqueue shards by chat id: all updates of one chat land on the same worker.
func (b *Bot) enqueue(update tgbotapi.Update) {
	chatID := updateChatID(update)
	if chatID == 0 {
		return
	}

	idx := int(uint64(chatID) % uint64(len(b.updates)))
	select {
	case b.updates[idx] <- update:
	default:
		updatesDropped.Inc()
		log.Printf("dropping update for chat %d, worker queue full", chatID)
	}
}

func (b *Bot) updateWorker(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case update := <-updates:
			b.handleUpdate(ctx, update)
		case <-ctx.Done():
			log.Println("Finishing update worker due to context cancellation")
			return
		}
	}
}

func updateChatID(update tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	updatesProcessed.Inc()

	if q := update.CallbackQuery; q != nil {
		defer b.api.Request(tgbotapi.NewCallback(q.ID, "")) //nolint:errcheck
	}

	ev, ok := b.eventFromUpdate(update)
	if !ok {
		return
	}

	if err := b.service.HandleEvent(ctx, ev); err != nil {
		updateErrors.Inc()
		log.Printf("handling update for chat %d: %v", ev.ChatID, err)
	}
}

// eventFromUpdate flattens a Telegram update into a service event. Group chat
// traffic is ignored, the bot is a private-chat agent.
func (b *Bot) eventFromUpdate(update tgbotapi.Update) (service.Event, bool) {
	if q := update.CallbackQuery; q != nil && q.Message != nil {
		if !q.Message.Chat.IsPrivate() {
			return service.Event{}, false
		}
		action, err := service.ParseAction(q.Data)
		if err != nil {
			log.Printf("ignoring callback from chat %d: %v", q.Message.Chat.ID, err)
			return service.Event{}, false
		}
		return service.Event{
			ChatID: q.Message.Chat.ID,
			Kind:   service.EventCallback,
			Action: action,
		}, true
	}

	m := update.Message
	if m == nil || !m.Chat.IsPrivate() {
		return service.Event{}, false
	}

	if m.Contact != nil {
		return service.Event{
			ChatID: m.Chat.ID,
			Kind:   service.EventContact,
			Phone:  m.Contact.PhoneNumber,
		}, true
	}

	if m.IsCommand() {
		if m.Command() == "start" {
			return service.Event{ChatID: m.Chat.ID, Kind: service.EventStart}, true
		}
		return service.Event{
			ChatID:  m.Chat.ID,
			Kind:    service.EventCommand,
			Command: m.Command(),
		}, true
	}

	text := strings.TrimSpace(m.Text)
	if text == "" {
		return service.Event{}, false
	}
	return service.Event{ChatID: m.Chat.ID, Kind: service.EventText, Text: text}, true
}

// handleBootstrapAdmin seeds the first SUPER_ADMIN out of band. The body is a
// form with a shared secret and a shell-quoted "text" field:
// "Full Name" +998901234567 password
func (b *Bot) handleBootstrapAdmin(ctx context.Context, r *http.Request, w http.ResponseWriter) error {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return fmt.Errorf("parse form: %w", err)
	}

	if b.cfg.BootstrapSecret == "" || r.Form.Get("secret") != b.cfg.BootstrapSecret {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
		return fmt.Errorf("unauthorized")
	}

	fields, err := shlex.Split(r.Form.Get("text"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return fmt.Errorf("split text: %w", err)
	}
	if len(fields) != 3 {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`Expected: "Full Name" phone password`))
		return fmt.Errorf("expected 3 fields, got %d", len(fields))
	}

	if err := b.service.BootstrapAdmin(ctx, fields[0], fields[1], fields[2]); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	_, _ = w.Write([]byte("Admin created"))
	return nil
}
