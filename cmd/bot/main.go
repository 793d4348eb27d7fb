package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/wapuda/clipsaver_pro/internal/ads"
	"github.com/wapuda/clipsaver_pro/internal/jobs"
	"github.com/wapuda/clipsaver_pro/internal/logx"
	"github.com/wapuda/clipsaver_pro/internal/platform"
	"github.com/wapuda/clipsaver_pro/internal/profile"
	"github.com/wapuda/clipsaver_pro/internal/stats"
)

type cfg struct {
	RedisAddr     string
	AdCatalogPath string
	RateLimitSec  int
	AdminIDs      []int64
	AllowList     []string
	BotToken      string
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func loadCfg() cfg {
	var admins []int64
	for _, p := range strings.Split(os.Getenv("ADMIN_IDS"), ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64); err == nil {
			admins = append(admins, id)
		}
	}
	return cfg{
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		AdCatalogPath: getenv("ADS_FILE", "ads.json"),
		RateLimitSec:  mustInt("RATE_LIMIT_SEC", 3),
		AdminIDs:      admins,
		AllowList:     allowListFromEnv(),
		BotToken:      os.Getenv("BOT_TOKEN"),
	}
}

// allowListFromEnv reads the recognized-host substrings from
// ALLOWED_PLATFORMS (comma-separated), falling back to the built-in list.
func allowListFromEnv() []string {
	raw := os.Getenv("ALLOWED_PLATFORMS")
	if raw == "" {
		return platform.DefaultAllowList
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if sub := strings.ToLower(strings.TrimSpace(p)); sub != "" {
			out = append(out, sub)
		}
	}
	if len(out) == 0 {
		return platform.DefaultAllowList
	}
	return out
}

func newULID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

var rctx = context.Background()

type server struct {
	cfg       cfg
	bot       *tgbotapi.BotAPI
	rdb       *redis.Client
	asynq     *asynq.Client
	stats     *stats.RedisStore
	profiles  *profile.Manager
	creatives map[string]ads.Creative // id -> creative, for click resolution
}

func main() {
	_ = godotenv.Load()
	c := loadCfg()

	logx.Setup(logx.FromEnv("bot"))
	log.Info().Msg("bot starting")

	if c.BotToken == "" {
		log.Fatal().Msg("BOT_TOKEN is required")
	}

	// health endpoint
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"ok":true}`)) })
		log.Info().Msg("bot health on :8080/health")
		log.Error().Err(http.ListenAndServe(":8080", nil)).Msg("health endpoint stopped")
	}()

	bot, err := tgbotapi.NewBotAPI(c.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram auth failed")
	}
	bot.Debug = false
	log.Info().Str("username", bot.Self.UserName).Msg("bot authorized")

	rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	asClient := asynq.NewClient(asynq.RedisClientOpt{Addr: c.RedisAddr})

	creatives := make(map[string]ads.Creative)
	if catalog, err := ads.LoadCatalog(c.AdCatalogPath); err != nil {
		log.Warn().Err(err).Str("path", c.AdCatalogPath).Msg("ad catalog unavailable; click routing disabled")
	} else {
		for _, cr := range catalog {
			creatives[cr.ID] = cr
		}
	}

	s := &server{
		cfg:       c,
		bot:       bot,
		rdb:       rdb,
		asynq:     asClient,
		stats:     stats.NewRedisStore(rdb, getenv("STATS_KEY", "")),
		profiles:  profile.NewManager(profile.NewRedisStore(rdb, getenv("USER_KEY_PREFIX", ""))),
		creatives: creatives,
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	for upd := range updates {
		switch {
		case upd.Message != nil:
			s.onMessage(upd.Message)
		case upd.CallbackQuery != nil:
			s.onCallback(upd.CallbackQuery)
		}
	}
}

// --- Handlers ---

func (s *server) onMessage(m *tgbotapi.Message) {
	if m.From == nil {
		return
	}
	log.Info().
		Int64("chat_id", m.Chat.ID).
		Int64("user_id", m.From.ID).
		Bool("command", m.IsCommand()).
		Msg("message received")

	if m.IsCommand() {
		switch m.Command() {
		case "start":
			s.profiles.Touch(rctx, m.From.ID, m.From.FirstName, m.From.UserName)
			s.sendStart(m.Chat.ID, m.From.FirstName)
		case "help":
			_, _ = s.bot.Send(tgbotapi.NewMessage(m.Chat.ID, helpText()))
		case "platforms":
			_, _ = s.bot.Send(tgbotapi.NewMessage(m.Chat.ID, platformsText()))
		case "stats":
			s.sendUserStats(m.Chat.ID, m.From.ID)
		case "admin":
			if !s.isAdmin(m.From.ID) {
				_, _ = s.bot.Send(tgbotapi.NewMessage(m.Chat.ID, "⛔ This command is for administrators."))
				return
			}
			s.sendAdminStats(m.Chat.ID)
		default:
			_, _ = s.bot.Send(tgbotapi.NewMessage(m.Chat.ID, "Unknown command. Send a video link or /help."))
		}
		return
	}

	if m.Text != "" {
		s.handleLink(m)
	}
}

func (s *server) handleLink(m *tgbotapi.Message) {
	userID := m.From.ID
	chatID := m.Chat.ID

	if !s.allowRequest(userID) {
		_, _ = s.bot.Send(tgbotapi.NewMessage(chatID, "⏳ Too fast. Wait a few seconds and try again."))
		return
	}

	rawURL := platform.ExtractURL(m.Text)
	if rawURL == "" {
		_, _ = s.bot.Send(tgbotapi.NewMessage(chatID, "Send me a video link. /platforms shows what I support."))
		return
	}
	if !platform.Supported(rawURL, s.cfg.AllowList) {
		_, _ = s.bot.Send(tgbotapi.NewMessage(chatID, "❌ This site is not supported.\n\n"+platformsText()))
		return
	}

	p := platform.Detect(rawURL)
	status, err := s.bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("⏳ Downloading from %s…", p.Name())))
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("status message send failed")
		return
	}

	jobID := newULID()
	payload := jobs.DownloadVideoPayload{
		JobID:     jobID,
		ChatID:    chatID,
		UserID:    userID,
		MessageID: status.MessageID,
		URL:       rawURL,
		FirstName: m.From.FirstName,
		Username:  m.From.UserName,
	}
	b, _ := json.Marshal(payload)
	// no queue-level retries: every download fault already comes back as a
	// classified result, so retrying would only repeat the same failure
	_, err = s.asynq.EnqueueContext(rctx, asynq.NewTask(jobs.TaskDownloadVideo, b),
		asynq.MaxRetry(0), asynq.Timeout(15*time.Minute))
	if err != nil {
		log.Error().Err(err).Str("job", jobID).Msg("asynq enqueue download:video failed")
		edit := tgbotapi.NewEditMessageText(chatID, status.MessageID, "❌ Queue error, try again later.")
		_, _ = s.bot.Send(edit)
		return
	}

	log.Info().
		Str("job", jobID).
		Int64("user_id", userID).
		Str("platform", string(p)).
		Msg("download enqueued")
}

func (s *server) onCallback(cq *tgbotapi.CallbackQuery) {
	data := cq.Data
	switch {
	case strings.HasPrefix(data, "adclick:"):
		s.onAdClick(cq, strings.TrimPrefix(data, "adclick:"))
	case data == "menu:help":
		_ = s.answerCB(cq, "")
		_, _ = s.bot.Send(tgbotapi.NewMessage(cq.Message.Chat.ID, helpText()))
	case data == "menu:platforms":
		_ = s.answerCB(cq, "")
		_, _ = s.bot.Send(tgbotapi.NewMessage(cq.Message.Chat.ID, platformsText()))
	case data == "menu:stats":
		_ = s.answerCB(cq, "")
		s.sendUserStats(cq.Message.Chat.ID, cq.From.ID)
	default:
		_ = s.answerCB(cq, "")
	}
}

func (s *server) onAdClick(cq *tgbotapi.CallbackQuery, adID string) {
	payload := jobs.RecordAdClickPayload{AdID: adID, UserID: cq.From.ID}
	b, _ := json.Marshal(payload)
	if _, err := s.asynq.EnqueueContext(rctx, asynq.NewTask(jobs.TaskRecordAdClick, b), asynq.MaxRetry(3)); err != nil {
		log.Error().Err(err).Str("ad", adID).Msg("asynq enqueue stats:adclick failed")
	}

	cr, ok := s.creatives[adID]
	if !ok || cr.URL == "" {
		_ = s.answerCB(cq, "✅")
		return
	}
	_ = s.answerCB(cq, "Opening…")
	_, _ = s.bot.Send(tgbotapi.NewMessage(cq.Message.Chat.ID, cr.URL))
}

// --- Reports ---

func (s *server) loadAggregate() *stats.Aggregate {
	agg, err := s.stats.Load(rctx)
	if err != nil {
		log.Error().Err(err).Msg("stats load failed")
		return nil
	}
	if agg == nil {
		agg = &stats.Aggregate{}
	}
	return agg
}

func (s *server) sendUserStats(chatID, userID int64) {
	p := s.profiles.Get(rctx, userID)
	var b strings.Builder
	fmt.Fprintf(&b, "👤 Your stats\n\n")
	fmt.Fprintf(&b, "• Level: %s\n", profile.Level(p.TotalDownloads))
	fmt.Fprintf(&b, "• Downloads: %d\n", p.TotalDownloads)
	if p.FirstUse != "" {
		fmt.Fprintf(&b, "• With us since: %s\n", p.FirstUse)
	}
	if agg := s.loadAggregate(); agg != nil {
		b.WriteString("\n")
		b.WriteString(agg.Report(time.Now().Format("2006-01-02")))
	}
	_, _ = s.bot.Send(tgbotapi.NewMessage(chatID, b.String()))
}

func (s *server) sendAdminStats(chatID int64) {
	agg := s.loadAggregate()
	if agg == nil {
		_, _ = s.bot.Send(tgbotapi.NewMessage(chatID, "❌ Statistics are unavailable right now."))
		return
	}
	_, _ = s.bot.Send(tgbotapi.NewMessage(chatID, agg.AdminReport(time.Now().Format("2006-01-02"))))
}

func (s *server) sendStart(chatID int64, firstName string) {
	name := firstName
	if name == "" {
		name = "there"
	}
	btns := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Platforms", "menu:platforms"),
			tgbotapi.NewInlineKeyboardButtonData("📊 My stats", "menu:stats"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❓ Help", "menu:help"),
		),
	)
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"👋 Hi %s!\n\nSend me a link to a video and I will fetch it for you.\nMaximum file size: 50MB.", name))
	msg.ReplyMarkup = btns
	_, _ = s.bot.Send(msg)
}

func helpText() string {
	return "❓ How to use\n\n" +
		"1. Copy a video link from a supported site\n" +
		"2. Send it to me as a message\n" +
		"3. Wait for the video to arrive\n\n" +
		"Commands:\n" +
		"/platforms - supported sites\n" +
		"/stats - your stats and totals"
}

func platformsText() string {
	known := []platform.Platform{
		platform.YouTube, platform.TikTok, platform.Instagram, platform.Twitter,
		platform.Facebook, platform.Reddit, platform.Vimeo, platform.Dailymotion,
		platform.Twitch, platform.Pinterest, platform.Snapchat, platform.SoundCloud,
	}
	var b strings.Builder
	b.WriteString("📋 Supported platforms:\n")
	for _, p := range known {
		b.WriteString("\n" + p.Name())
	}
	return b.String()
}

// --- Rate limiting (Redis) ---

func keyRateLimit(user int64) string { return fmt.Sprintf("clipsaver:rl:%d", user) }

// allowRequest admits one link per user per window. SET NX EX makes the
// check-and-mark a single round trip; on Redis errors the request passes.
func (s *server) allowRequest(userID int64) bool {
	ttl := time.Duration(s.cfg.RateLimitSec) * time.Second
	ok, err := s.rdb.SetNX(rctx, keyRateLimit(userID), 1, ttl).Result()
	if err != nil {
		log.Error().Err(err).Int64("uid", userID).Msg("rate limit check failed")
		return true
	}
	return ok
}

func (s *server) isAdmin(userID int64) bool {
	for _, id := range s.cfg.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *server) answerCB(cq *tgbotapi.CallbackQuery, text string) error {
	_, err := s.bot.Request(tgbotapi.NewCallback(cq.ID, text))
	return err
}
