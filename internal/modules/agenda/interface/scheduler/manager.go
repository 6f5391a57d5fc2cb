package scheduler

import (
	"context"
	"time"

	"CrediAgenda/internal/config"
	"CrediAgenda/internal/modules/agenda/application/service"
	"CrediAgenda/pkg/redis"
	"CrediAgenda/pkg/zlog"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Default cron specs, overridable per job from monitorConfig.
const (
	defaultDispatchSpec       = "*/5 * * * *"
	defaultSlaSpec            = "0 * * * *"
	defaultPreAlertSpec       = "*/5 * * * *"
	defaultOverdueSpec        = "30 * * * *"
	defaultPromisesSpec       = "0 7 * * *"
	defaultDigestSpec         = "0 8 * * *"
	defaultAutoActivitiesSpec = "0 6 * * *"
	defaultSeguimientosSpec   = "0 9 * * *"
	defaultWeeklyReportSpec   = "0 8 * * 1"
	defaultDailyReportSpec    = "0 1 * * *"
	defaultRetentionSpec      = "0 3 * * 0"
)

// jobTimeout bounds one sweep run.
const jobTimeout = 10 * time.Minute

// Manager registers the monitor sweeps with cron and guards each run with a
// Redis lock so only one instance executes a job at a time.
type Manager struct {
	cron    *cron.Cron
	monitor service.MonitorService
	lockTTL time.Duration
}

func NewManager(monitor service.MonitorService) *Manager {
	conf := config.GetConfig()
	ttl := time.Duration(conf.MonitorConfig.LockTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Manager{
		cron:    cron.New(),
		monitor: monitor,
		lockTTL: ttl,
	}
}

// Start registers every job and launches the cron loop. No-op when the
// monitor is disabled in configuration.
func (m *Manager) Start() error {
	conf := config.GetConfig()
	if !conf.MonitorConfig.Enabled {
		zlog.Info("monitor deshabilitado por configuración")
		return nil
	}
	mc := conf.MonitorConfig

	jobs := []struct {
		nombre string
		spec   string
		def    string
		run    func(context.Context) (service.ResumenJob, error)
	}{
		{"despacho_alertas", mc.DispatchSpec, defaultDispatchSpec, m.monitor.ProcesarAlertasPendientes},
		{"sla_solicitudes", mc.SlaSpec, defaultSlaSpec, m.monitor.MonitorearSLASolicitudes},
		{"alertas_previas", mc.PreAlertSpec, defaultPreAlertSpec, m.monitor.GenerarAlertasPrevias},
		{"solicitudes_vencidas", mc.OverdueSpec, defaultOverdueSpec, m.monitor.VerificarSolicitudesVencidas},
		{"actividades_vencidas", mc.OverdueSpec, defaultOverdueSpec, m.monitor.VerificarActividadesVencidas},
		{"promesas_vencidas", mc.PromisesSpec, defaultPromisesSpec, m.monitor.VerificarPromesasVencidas},
		{"agenda_diaria", mc.DigestSpec, defaultDigestSpec, m.monitor.GenerarAgendaDiaria},
		{"actividades_automaticas", mc.AutoActivitiesSpec, defaultAutoActivitiesSpec, m.monitor.CrearActividadesAutomaticas},
		{"seguimientos", mc.SeguimientosSpec, defaultSeguimientosSpec, m.monitor.NotificarSeguimientos},
		{"reporte_efectividad", mc.WeeklyReportSpec, defaultWeeklyReportSpec, m.monitor.GenerarReporteEfectividad},
		{"reporte_solicitudes", mc.DailyReportSpec, defaultDailyReportSpec, m.monitor.GenerarReporteSolicitudes},
		{"limpieza_alertas", mc.RetentionSpec, defaultRetentionSpec, m.monitor.LimpiarAlertasAntiguas},
	}

	for _, j := range jobs {
		spec := j.spec
		if spec == "" {
			spec = j.def
		}
		nombre, run := j.nombre, j.run
		if _, err := m.cron.AddFunc(spec, func() { m.ejecutar(nombre, run) }); err != nil {
			return err
		}
		zlog.Info("monitor job registrado", zap.String("job", nombre), zap.String("spec", spec))
	}

	m.cron.Start()
	return nil
}

// Stop halts scheduling and waits for running jobs to finish.
func (m *Manager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

// ejecutar runs one sweep under the distributed lock, with a panic guard so a
// failing job never takes the scheduler down.
func (m *Manager) ejecutar(nombre string, run func(context.Context) (service.ResumenJob, error)) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error("monitor job panicked", zap.String("job", nombre), zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	lockKey := "monitor:lock:" + nombre
	if redis.IsConnected() {
		ok, err := redis.SetNX(ctx, lockKey, time.Now().Unix(), m.lockTTL)
		if err != nil {
			zlog.Warn("no se pudo tomar el lock del job", zap.String("job", nombre), zap.Error(err))
			return
		}
		if !ok {
			// Another instance holds the job.
			return
		}
		defer func() {
			if _, err := redis.Del(context.Background(), lockKey); err != nil {
				zlog.Warn("no se pudo liberar el lock del job", zap.String("job", nombre), zap.Error(err))
			}
		}()
	}

	if _, err := run(ctx); err != nil {
		zlog.Error("monitor job falló", zap.String("job", nombre), zap.Error(err))
	}
}
