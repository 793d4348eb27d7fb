package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/wapuda/clipsaver_pro/internal/ads"
	"github.com/wapuda/clipsaver_pro/internal/download"
	"github.com/wapuda/clipsaver_pro/internal/jobs"
	"github.com/wapuda/clipsaver_pro/internal/logx"
	"github.com/wapuda/clipsaver_pro/internal/platform"
	"github.com/wapuda/clipsaver_pro/internal/profile"
	"github.com/wapuda/clipsaver_pro/internal/stats"
)

/* ---------------------- config & utils ---------------------- */

type cfg struct {
	RedisAddr          string
	BotToken           string
	DownloadDir        string
	MaxFileMB          int
	DownloadTimeoutSec int
	Concurrency        int
	AdsEnabled         bool
	AdCatalogPath      string
	AdDailyMax         int
	AdPolicy           string
	SweepMaxAgeMin     int
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

func mustBool(k string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}
	return def
}

func loadCfg() cfg {
	return cfg{
		RedisAddr:          getenv("REDIS_ADDR", "localhost:6379"),
		BotToken:           os.Getenv("BOT_TOKEN"),
		DownloadDir:        getenv("DOWNLOAD_DIR", "/data/downloads"),
		MaxFileMB:          mustInt("MAX_FILE_SIZE_MB", 50),
		DownloadTimeoutSec: mustInt("DOWNLOAD_TIMEOUT_SEC", 300),
		Concurrency:        mustInt("CONCURRENCY", 2),
		AdsEnabled:         mustBool("ADS_ENABLED", true),
		AdCatalogPath:      getenv("ADS_FILE", "ads.json"),
		AdDailyMax:         mustInt("MAX_ADS_PER_USER_DAILY", 3),
		AdPolicy:           getenv("AD_ROTATION", "smart"),
		SweepMaxAgeMin:     mustInt("SWEEP_MAX_AGE_MIN", 60),
	}
}

/* ---------------------- main ---------------------- */

type worker struct {
	cfg      cfg
	bot      *tgbotapi.BotAPI
	orch     *download.Orchestrator
	ledger   *stats.Ledger
	profiles *profile.Manager
	selector *ads.Selector
}

func main() {
	_ = godotenv.Load()
	c := loadCfg()

	logx.Setup(logx.FromEnv("worker"))
	log.Info().Msg("worker starting")

	if c.BotToken == "" {
		log.Fatal().Msg("BOT_TOKEN is required")
	}

	bot, err := tgbotapi.NewBotAPI(c.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram auth failed")
	}

	rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})

	ledger, err := stats.NewLedger(context.Background(), stats.NewRedisStore(rdb, getenv("STATS_KEY", "")))
	if err != nil {
		log.Fatal().Err(err).Msg("stats ledger init failed")
	}
	profiles := profile.NewManager(profile.NewRedisStore(rdb, getenv("USER_KEY_PREFIX", "")))

	var catalog []ads.Creative
	if catalog, err = ads.LoadCatalog(c.AdCatalogPath); err != nil {
		log.Warn().Err(err).Str("path", c.AdCatalogPath).Msg("ad catalog unavailable; running without ads")
		catalog = nil
	}
	quota := ads.NewQuotaTracker(c.AdDailyMax)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	selector := ads.NewSelector(catalog, quota, ads.Policy(c.AdPolicy), rng)

	orch, err := download.NewOrchestrator(
		c.DownloadDir,
		int64(c.MaxFileMB)*1024*1024,
		time.Duration(c.DownloadTimeoutSec)*time.Second,
		download.NewYTDLP(),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("orchestrator init failed")
	}

	w := &worker{
		cfg:      c,
		bot:      bot,
		orch:     orch,
		ledger:   ledger,
		profiles: profiles,
		selector: selector,
	}

	// hourly sweep for artifacts orphaned by crashed jobs
	cr := cron.New()
	maxAge := time.Duration(c.SweepMaxAgeMin) * time.Minute
	_, err = cr.AddFunc("@hourly", func() {
		if n := orch.SweepStale(maxAge); n > 0 {
			log.Info().Int("removed", n).Msg("stale artifacts swept")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("cron schedule failed")
	}
	cr.Start()
	defer cr.Stop()

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: c.RedisAddr}, asynq.Config{
		Concurrency: c.Concurrency,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(jobs.TaskDownloadVideo, func(ctx context.Context, t *asynq.Task) error {
		var p jobs.DownloadVideoPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return err
		}
		return w.handleDownload(ctx, p)
	})
	mux.HandleFunc(jobs.TaskRecordAdClick, func(ctx context.Context, t *asynq.Task) error {
		var p jobs.RecordAdClickPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return err
		}
		w.ledger.RecordClick(ctx, p.AdID)
		lg := logx.FromCtx(ctx)
		lg.Info().Str("ad", p.AdID).Int64("uid", p.UserID).Msg("ad click recorded")
		return nil
	})

	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}

/* ---------------------- download handling ---------------------- */

func (w *worker) handleDownload(ctx context.Context, p jobs.DownloadVideoPayload) error {
	ctx = context.WithValue(ctx, logx.CtxKeyJobID, p.JobID)
	ctx = context.WithValue(ctx, logx.CtxKeyUserID, p.UserID)
	l := logx.FromCtx(ctx)

	l.Info().Str("url", p.URL).Msg("download started")
	started := time.Now()

	// registration happens on every attempt, success or not
	w.profiles.Touch(ctx, p.UserID, p.FirstName, p.Username)

	s, f := w.orch.Download(ctx, p.URL, p.UserID)
	if f != nil {
		l.Warn().
			Str("kind", string(f.Kind)).
			Str("detail", f.Message).
			Dur("took", time.Since(started)).
			Msg("download failed")
		w.editStatus(p.ChatID, p.MessageID, f.UserMessage())
		// a classified failure is terminal; retrying would repeat it
		return nil
	}
	defer download.CleanupArtifact(s.FilePath)

	l.Info().
		Str("title", s.Title).
		Str("platform", s.SourcePlatform).
		Dur("took", time.Since(started)).
		Msg("download complete")

	w.editStatus(p.ChatID, p.MessageID, "📤 Uploading…")

	video := tgbotapi.NewVideo(p.ChatID, tgbotapi.FilePath(s.FilePath))
	video.Caption = videoCaption(s)
	if _, err := w.bot.Send(video); err != nil {
		l.Error().Err(err).Msg("video upload failed")
		w.editStatus(p.ChatID, p.MessageID, "❌ Upload to Telegram failed. Try again later.")
		return nil
	}

	// status message is noise once the video has arrived
	_, _ = w.bot.Request(tgbotapi.NewDeleteMessage(p.ChatID, p.MessageID))

	w.profiles.IncrDownloads(ctx, p.UserID)
	w.ledger.RecordDownload(ctx, strconv.FormatInt(p.UserID, 10))

	w.maybeSendAd(ctx, p.ChatID, p.UserID)
	return nil
}

func videoCaption(s *download.Success) string {
	caption := "✅ " + s.Title
	// yt-dlp reports mixed-case extractor names ("TikTok"); the platform
	// constants are lowercase
	if p := platform.Platform(strings.ToLower(s.SourcePlatform)); p.Name() != platform.Unknown.Name() {
		caption += "\n" + p.Name()
	}
	if s.DurationSec > 0 {
		caption += fmt.Sprintf("\n⏱ %d:%02d", s.DurationSec/60, s.DurationSec%60)
	}
	return caption
}

// maybeSendAd shows the next creative after a successful download, respecting
// the per-user daily impression cap.
func (w *worker) maybeSendAd(ctx context.Context, chatID, userID int64) {
	if !w.cfg.AdsEnabled {
		return
	}
	cr := w.selector.Select(userID)
	if cr == nil {
		return
	}

	msg := tgbotapi.NewMessage(chatID, cr.Text)
	if cr.ButtonText != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(cr.ButtonText, "adclick:"+cr.ID),
			),
		)
	}
	if _, err := w.bot.Send(msg); err != nil {
		lg := logx.FromCtx(ctx)
		lg.Error().Err(err).Str("ad", cr.ID).Msg("ad send failed")
		return
	}
	w.ledger.RecordShown(ctx, cr.ID)
	lg := logx.FromCtx(ctx)
	lg.Info().Str("ad", cr.ID).Msg("ad shown")
}

func (w *worker) editStatus(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := w.bot.Send(edit); err != nil {
		log.Debug().Err(err).Int64("chat_id", chatID).Msg("status edit failed")
	}
}
