// Package app monta as dependências e o ciclo de vida do servidor HTTP.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/onbongo-leads/internal/config"
	"github.com/xavierca1/onbongo-leads/internal/entity"
	"github.com/xavierca1/onbongo-leads/internal/infra/database"
	"github.com/xavierca1/onbongo-leads/internal/infra/http/handlers"
	"github.com/xavierca1/onbongo-leads/internal/infra/http/middleware"
	"github.com/xavierca1/onbongo-leads/internal/infra/integration/meta"
	"github.com/xavierca1/onbongo-leads/internal/infra/integration/tiktok"
	"github.com/xavierca1/onbongo-leads/internal/infra/integration/webhook"
	"github.com/xavierca1/onbongo-leads/internal/infra/jsonstore"
	"github.com/xavierca1/onbongo-leads/internal/infra/mail"
	"github.com/xavierca1/onbongo-leads/internal/infra/worker"
	"github.com/xavierca1/onbongo-leads/internal/usecase"
)

const Version = "1.0.0"

type stores struct {
	leads    entity.LeadRepositoryInterface
	settings entity.SettingRepositoryInterface
	logs     entity.DeliveryLogRepositoryInterface
	pinger   handlers.Pinger
	name     string
	close    func() error
}

type App struct {
	Config config.Config
	Log    *logrus.Logger
	Router http.Handler

	Leads    entity.LeadRepositoryInterface
	Settings entity.SettingRepositoryInterface
	Logs     entity.DeliveryLogRepositoryInterface

	Webhook     *webhook.Client
	Meta        *meta.Client
	TikTok      *tiktok.Client
	Conversions *usecase.ReportConversionsUseCase
	Dispatcher  *usecase.LeadDispatcher
	Monitor     *worker.PendingDeliveryMonitor

	closeStore func() error
}

func New(cfg config.Config, log *logrus.Logger) (*App, error) {
	st, err := openStores(cfg)
	if err != nil {
		return nil, err
	}
	log.WithField("store", st.name).Info("💾 Store inicializado")

	// 1. Status e canais de entrega
	tracker := usecase.NewStatusTracker(st.leads)
	webhookClient := webhook.NewClient(st.settings, st.leads, st.logs, tracker, log)
	metaClient := meta.NewClient(st.settings, st.logs, log)
	tiktokClient := tiktok.NewClient(st.settings, st.logs, log)
	conversionsUC := usecase.NewReportConversionsUseCase(st.leads, tracker, log, metaClient, tiktokClient)

	mailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
	notifier := mail.NewLeadNotifier(mailSender, st.settings)

	dispatcher := usecase.NewLeadDispatcher(webhookClient, conversionsUC, notifier, st.settings, log)

	// 2. UseCases
	submitUC := usecase.NewSubmitLeadUseCase(st.leads, dispatcher, log)
	settingsUC := usecase.NewSettingsUseCase(st.settings)
	dashboardUC := usecase.NewDashboardUseCase(st.leads)

	// 3. Handlers
	authn := middleware.NewAuthenticator(cfg.JWTSecret, cfg.AdminUsername, cfg.AdminPasswordHash, cfg.TokenTTL)
	router := NewRouter(RouterDeps{
		Config:   cfg,
		Log:      log,
		Auth:     authn,
		Leads:    handlers.NewLeadHandler(submitUC, st.leads, cfg.RateLimitPerMinute, log),
		Admin:    handlers.NewAdminHandler(settingsUC, dashboardUC, st.logs, webhookClient, conversionsUC, log),
		Login:    handlers.NewAuthHandler(authn, log),
		Tracking: handlers.NewTrackingHandler(st.settings, log),
		Health:   handlers.NewHealthHandler(st.pinger, st.name, Version),
	})

	return &App{
		Config:      cfg,
		Log:         log,
		Router:      router,
		Leads:       st.leads,
		Settings:    st.settings,
		Logs:        st.logs,
		Webhook:     webhookClient,
		Meta:        metaClient,
		TikTok:      tiktokClient,
		Conversions: conversionsUC,
		Dispatcher:  dispatcher,
		Monitor:     worker.NewPendingDeliveryMonitor(st.leads, log, cfg.MonitorInterval),
		closeStore:  st.close,
	}, nil
}

func openStores(cfg config.Config) (*stores, error) {
	if cfg.UsePostgres() {
		db, err := database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("erro ao conectar no Postgres: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return postgresStores(db), nil
	}

	store, err := jsonstore.Open(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	return &stores{
		leads:    store.Leads(),
		settings: store.Settings(),
		logs:     store.DeliveryLogs(),
		pinger:   store,
		name:     "json_store",
		close:    func() error { return nil },
	}, nil
}

func postgresStores(db *sql.DB) *stores {
	return &stores{
		leads:    database.NewLeadRepository(db),
		settings: database.NewSettingRepository(db),
		logs:     database.NewDeliveryLogRepository(db),
		pinger:   handlers.PingFunc(db.PingContext),
		name:     "database",
		close:    db.Close,
	}
}

// Run sobe o servidor e o monitor; ao cancelar ctx encerra o HTTP e espera os fan-outs.
func (a *App) Run(ctx context.Context) error {
	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	go a.Monitor.Start(monitorCtx)

	srv := &http.Server{
		Addr:              a.Config.Addr(),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.WithField("addr", srv.Addr).Info("🔥 Server OnBongo Leads rodando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("erro no servidor HTTP: %w", err)
		}
	case <-ctx.Done():
	}

	a.Log.Info("⚠️ Encerrando servidor")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Log.WithError(err).Error("❌ Erro no shutdown do HTTP")
	}

	return a.waitDispatches(shutdownCtx)
}

func (a *App) waitDispatches(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.Dispatcher.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.Log.Info("✅ Entregas em andamento finalizadas")
		return nil
	case <-ctx.Done():
		return errors.New("timeout aguardando entregas em andamento")
	}
}

func (a *App) Close() error {
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}
