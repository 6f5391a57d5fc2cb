package http

import (
	"CrediAgenda/internal/config"
	"CrediAgenda/internal/initial"
	jwtMiddleware "CrediAgenda/internal/middleware/jwt"
	"CrediAgenda/internal/modules/agenda/application/service"
	"CrediAgenda/internal/modules/agenda/domain/sla"
	"CrediAgenda/internal/modules/agenda/infrastructure/mq"
	"CrediAgenda/internal/modules/agenda/infrastructure/mq/kafka"
	"CrediAgenda/internal/modules/agenda/infrastructure/notify"
	"CrediAgenda/internal/modules/agenda/infrastructure/persistence"
	handler "CrediAgenda/internal/modules/agenda/interface/http"
	"CrediAgenda/internal/modules/agenda/interface/scheduler"
	"CrediAgenda/pkg/ssl"
	"CrediAgenda/pkg/ws"
	"CrediAgenda/pkg/zlog"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	GE        *gin.Engine
	Scheduler *scheduler.Manager
	publisher mq.Publisher
)

func init() {
	conf := config.GetConfig()
	zlog.Init(conf.LogConfig.LogPath)

	GE = gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	GE.Use(cors.New(corsConfig))
	if conf.SslConfig.Enabled {
		GE.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}

	wsHub := ws.NewHub()

	solicitudRepo := persistence.NewSolicitudRepository(initial.GormDB)
	cobranzaRepo := persistence.NewCobranzaRepository(initial.GormDB)
	alertaRepo := persistence.NewAlertaRepository(initial.GormDB)
	prestamoRepo := persistence.NewPrestamoRepository(initial.GormDB)
	directorioRepo := persistence.NewDirectorioRepository(initial.GormDB)
	historialRepo := persistence.NewHistorialRepository(initial.GormDB)

	var eventos *mq.Eventos
	if len(conf.KafkaConfig.Brokers) > 0 {
		pub, err := kafka.NewPublisher(conf.KafkaConfig.Brokers, conf.KafkaConfig.ClientID)
		if err != nil {
			zlog.Warn("kafka no disponible, eventos deshabilitados", zap.Error(err))
		} else {
			publisher = pub
			eventos = mq.NewEventos(pub, conf.KafkaConfig.EventTopic)
		}
	}

	dispatcher := notify.NewDispatcher(
		notify.NewEmailCanal(notify.EmailConfig{
			Host:     conf.NotifyConfig.SmtpHost,
			Port:     conf.NotifyConfig.SmtpPort,
			User:     conf.NotifyConfig.SmtpUser,
			Password: conf.NotifyConfig.SmtpPassword,
			From:     conf.NotifyConfig.SmtpFrom,
		}),
		notify.NewSmsCanal(notify.SmsConfig{
			URL:    conf.NotifyConfig.SmsURL,
			APIKey: conf.NotifyConfig.SmsAPIKey,
		}),
		notify.NewPushCanal(notify.PushConfig{
			URL:    conf.NotifyConfig.PushURL,
			APIKey: conf.NotifyConfig.PushAPIKey,
		}, wsHub),
	)

	clock := sla.SystemClock{}

	alertaSvc := service.NewAlertaService(alertaRepo, directorioRepo, dispatcher, eventos, clock,
		conf.SlaConfig.AlertDedupeHours, conf.SlaConfig.MaxDispatchAttempts)
	solicitudSvc := service.NewSolicitudService(solicitudRepo, directorioRepo, historialRepo,
		alertaSvc, eventos, clock, conf.SlaConfig.DefaultHours)
	cobranzaSvc := service.NewCobranzaService(cobranzaRepo, directorioRepo, historialRepo,
		alertaSvc, eventos, clock, conf.SlaConfig.PreAlertMinutes)
	monitorSvc := service.NewMonitorService(solicitudRepo, cobranzaRepo, prestamoRepo,
		directorioRepo, historialRepo, alertaRepo, alertaSvc, eventos, clock,
		conf.MonitorConfig.DigestRecipientRole,
		conf.SlaConfig.RetentionTerminalDays, conf.SlaConfig.RetentionPendingDays)
	sesionSvc := service.NewSesionService(directorioRepo)

	Scheduler = scheduler.NewManager(monitorSvc)

	authH := handler.NewAuthHandler(sesionSvc)
	solicitudH := handler.NewSolicitudHandler(solicitudSvc)
	cobranzaH := handler.NewCobranzaHandler(cobranzaSvc)
	alertaH := handler.NewAlertaHandler(alertaSvc)
	wsH := handler.NewWsHandler(wsHub)

	GE.POST("/login", authH.Login)

	authed := GE.Group("/")
	authed.Use(jwtMiddleware.Auth())
	authed.GET("/wss", wsH.Conectar)

	authed.POST("/solicitudes", solicitudH.Crear)
	authed.GET("/solicitudes", solicitudH.Listar)
	authed.GET("/solicitudes/vencidas", solicitudH.ListarVencidas)
	authed.GET("/solicitudes/dashboard", solicitudH.Dashboard)
	authed.GET("/solicitudes/:id", solicitudH.Get)
	authed.PUT("/solicitudes/:id/estado", solicitudH.CambiarEstado)
	authed.PUT("/solicitudes/:id/asignar", solicitudH.Asignar)
	authed.POST("/solicitudes/:id/seguimiento", solicitudH.ProgramarSeguimiento)
	authed.GET("/solicitudes/:id/historial", solicitudH.Historial)

	authed.POST("/cobranza/actividades", cobranzaH.Crear)
	authed.GET("/cobranza/actividades", cobranzaH.Listar)
	authed.GET("/cobranza/agenda/hoy", cobranzaH.AgendaHoy)
	authed.GET("/cobranza/promesas/vencidas", cobranzaH.PromesasVencidas)
	authed.GET("/cobranza/dashboard", cobranzaH.Dashboard)
	authed.GET("/cobranza/actividades/:id", cobranzaH.Get)
	authed.PUT("/cobranza/actividades/:id/estado", cobranzaH.CambiarEstado)
	authed.PUT("/cobranza/actividades/:id/completar", cobranzaH.Completar)
	authed.PUT("/cobranza/actividades/:id/reprogramar", cobranzaH.Reprogramar)
	authed.GET("/cobranza/actividades/:id/historial", cobranzaH.Historial)

	authed.GET("/alertas", alertaH.Listar)
	authed.PUT("/alertas/:id/leida", alertaH.MarcarLeida)
	authed.PUT("/alertas/:id/atendida", alertaH.MarcarAtendida)
}

// ClosePublisher flushes and closes the Kafka producer on shutdown.
func ClosePublisher() {
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			zlog.Warn("kafka close failed", zap.Error(err))
		}
	}
}
