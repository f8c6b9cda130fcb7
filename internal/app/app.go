package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/IT-Nick/quizbot/internal/app/handlers/http/active_sessions_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/http/health_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/abandon_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/answer_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/leave_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/login_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/quizzes_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/resume_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/sessions"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/start_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/start_quiz_handler"
	"github.com/IT-Nick/quizbot/internal/app/handlers/telegram/submit_handler"
	"github.com/IT-Nick/quizbot/internal/app/middleware"
	msgRepo "github.com/IT-Nick/quizbot/internal/domain/messages/repository"
	msgService "github.com/IT-Nick/quizbot/internal/domain/messages/service"
	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/domain/session"
	usersRepo "github.com/IT-Nick/quizbot/internal/domain/users/repository"
	usersService "github.com/IT-Nick/quizbot/internal/domain/users/service"
	"github.com/IT-Nick/quizbot/internal/infra/cache"
	"github.com/IT-Nick/quizbot/internal/infra/config"
	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"github.com/IT-Nick/quizbot/internal/infra/platform"
	"github.com/IT-Nick/quizbot/internal/infra/poller"
	"github.com/IT-Nick/quizbot/internal/infra/report"
	"github.com/IT-Nick/quizbot/internal/infra/timer"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"gopkg.in/telebot.v4"
	telemw "gopkg.in/telebot.v4/middleware"
)

const shutdownTimeout = 10 * time.Second

type Services struct {
	userService    *usersService.UserService
	messageService *msgService.MessageService
	platform       *platform.Client
	quizCache      *cache.QuizCache
	registry       *session.Registry
	reports        timer.ReportRenderer
}

type App struct {
	config *config.Config
	log    *logger.Logger
	bot    *telebot.Bot
	db     *pgxpool.Pool
	redis  *redis.Client
	server *http.Server

	Services
}

func NewApp(ctx context.Context, configPath string) (*App, error) {
	configImpl, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("config.LoadConfig: %w", err)
	}

	log, err := logger.New(configImpl.Logger.Mode)
	if err != nil {
		return nil, fmt.Errorf("logger.New: %w", err)
	}

	db, err := InitDatabase(ctx, configImpl, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{
		config: configImpl,
		log:    log,
		db:     db,
	}

	// без redis бот работает, викторины просто не кешируются
	if configImpl.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, configImpl.Redis.Addr, configImpl.Redis.Password, configImpl.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, quiz cache disabled", "addr", configImpl.Redis.Addr, "error", err)
		} else {
			app.redis = rdb
		}
	}

	app.initServices()

	return app, nil
}

// Функция для инициализации сервисов и репозиториев
func (app *App) initServices() {
	userRepo := usersRepo.NewUserRepository(app.db)
	messageRepo := msgRepo.NewMessageRepository(app.db)

	app.userService = usersService.NewUserService(userRepo)
	app.messageService = msgService.NewMessageService(messageRepo, app.log)
	app.platform = platform.NewClient(app.config.Platform.BaseURL, app.config.Platform.RequestTimeout, app.log)
	if app.redis != nil {
		app.quizCache = cache.NewQuizCache(app.redis, app.config.Redis.QuizTTL, app.log)
	}
	app.registry = session.NewRegistry()

	// PDF-отчёт нужен шрифт с кириллицей, без него отчёты не отправляются
	if dir := app.config.Report.FontDir; dir != "" {
		renderer, err := report.NewRenderer(dir)
		if err != nil {
			app.log.Warn("quiz reports disabled", "error", err)
		} else {
			app.reports = renderer
		}
	}
}

// ListenAndServeTelegram запускает telegram бота
func (app *App) ListenAndServeTelegram() error {
	p, err := poller.NewPoller(app.config)
	if err != nil {
		return fmt.Errorf("poller.NewPoller: %w", err)
	}

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  app.config.TelegramBot.Token,
		Poller: p,
		OnError: func(err error, c telebot.Context) {
			kv := []interface{}{"error", err}
			if c != nil && c.Sender() != nil {
				kv = append(kv, "telegram_id", c.Sender().ID)
			}
			app.log.Error("telegram handler error", kv...)
		},
	})
	if err != nil {
		return fmt.Errorf("telebot.NewBot: %w", err)
	}
	app.bot = bot

	app.bootstrapHandlersTelegram()

	if err := bot.SetCommands([]telebot.Command{
		{Text: "start", Description: "Начать"},
		{Text: "login", Description: "Привязать аккаунт платформы"},
		{Text: "quizzes", Description: "Список викторин"},
		{Text: "submit", Description: "Отправить ответы"},
		{Text: "cancel", Description: "Выйти из викторины"},
	}); err != nil {
		app.log.Warn("failed to set bot commands", "error", err)
	}

	go app.bot.Start()
	app.log.Info("telegram bot started", "mode", app.config.TelegramBot.Mode, "username", bot.Me.Username)

	return nil
}

func (app *App) sessionManager() *sessions.Manager {
	return &sessions.Manager{
		Users:       app.userService,
		Messages:    app.messageService,
		Platform:    app.platform,
		QuizCache:   app.quizCache,
		Registry:    app.registry,
		Bot:         app.bot,
		Reports:     app.reports,
		FrontendURL: app.config.Platform.FrontendURL,
		Settings: sessions.Settings{
			HeartbeatInterval: app.config.Platform.HeartbeatInterval,
			CountdownInterval: app.config.Platform.CountdownInterval,
			CallTimeout:       app.config.Platform.RequestTimeout,
		},
		Log: app.log,
	}
}

// bootstrapHandlersTelegram - регистрирует обработчики для бота
func (app *App) bootstrapHandlersTelegram() {
	app.bot.Use(
		middleware.Recover(app.log),
		middleware.Logger(app.log),
		middleware.DebugUserActions(app.config.TelegramBot.Debug, app.registry),
		telemw.AutoRespond(),
	)

	manager := app.sessionManager()

	app.bot.Handle("/start", start_handler.NewStartHandler(app.userService, app.messageService, app.log).GetHandlerFunc())
	app.bot.Handle("/login", login_handler.NewLoginHandler(manager).GetHandlerFunc())

	// Список викторин с пагинацией. Кнопка открывает первую страницу, данные кнопок навигации page|subject|level.
	quizzes := quizzes_handler.NewQuizzesHandler(manager).GetHandlerFunc()
	app.bot.Handle("/quizzes", quizzes)
	app.bot.Handle(&telebot.Btn{Unique: model.QuizzesKey}, quizzes)

	startQuiz := start_quiz_handler.NewStartQuizHandler(manager).GetHandlerFunc()
	app.bot.Handle(&telebot.Btn{Unique: model.QuizKey}, startQuiz)
	app.bot.Handle("/quiz", startQuiz)
	app.bot.Handle(&telebot.Btn{Unique: model.ResumeKey}, resume_handler.NewResumeHandler(manager).GetHandlerFunc())
	app.bot.Handle(&telebot.Btn{Unique: model.AnswerKey}, answer_handler.NewAnswerHandler(manager).GetHandlerFunc())

	submit := submit_handler.NewSubmitHandler(manager).GetHandlerFunc()
	app.bot.Handle(&telebot.Btn{Unique: model.SubmitKey}, submit)
	app.bot.Handle("/submit", submit)
	app.bot.Handle(&telebot.Btn{Unique: model.AbandonKey}, abandon_handler.NewAbandonHandler(manager).GetHandlerFunc())

	leave := leave_handler.NewLeaveHandler(manager)
	app.bot.Handle("/cancel", leave.GetHandlerFunc())
	app.bot.Handle(&telebot.Btn{Unique: model.LeaveKey}, leave.GetConfirmHandlerFunc())
}

// ListenAndServeHTTP запускает HTTP сервер
func (app *App) ListenAndServeHTTP() error {
	mx := http.NewServeMux()

	checks := map[string]health_handler.Pinger{"postgres": app.db}
	if app.redis != nil {
		checks["redis"] = health_handler.PingFunc(func(ctx context.Context) error {
			return app.redis.Ping(ctx).Err()
		})
	}
	mx.Handle("GET /healthz", health_handler.NewHealthHandler(checks, app.userService))
	mx.Handle("GET /sessions/active", active_sessions_handler.NewActiveSessionsHandler(app.registry))

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", app.config.Server.Host, app.config.Server.Port),
		Handler:           mx,
		ReadHeaderTimeout: 5 * time.Second,
	}

	app.log.Info("http server started", "addr", app.server.Addr)
	if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe запускает оба сервера (Telegram и HTTP) и останавливает их по отмене ctx
func (app *App) ListenAndServe(ctx context.Context) error {
	if err := app.ListenAndServeTelegram(); err != nil {
		return fmt.Errorf("failed to start Telegram bot: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.ListenAndServeHTTP()
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil {
			err = fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}
	app.Shutdown()
	return err
}

// Shutdown останавливает бота, закрывает сессии и соединения
func (app *App) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if app.bot != nil {
		app.bot.Stop()
	}
	if app.server != nil {
		if err := app.server.Shutdown(ctx); err != nil {
			app.log.Warn("http server shutdown failed", "error", err)
		}
	}
	app.registry.Close()
	if app.redis != nil {
		_ = app.redis.Close()
	}
	app.db.Close()
	app.log.Info("application stopped")
	app.log.Sync()
}
