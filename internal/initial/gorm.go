package initial

import (
	"fmt"
	"log"
	"os"
	"time"

	"CrediAgenda/internal/config"
	"CrediAgenda/internal/modules/agenda/domain/alerta"
	"CrediAgenda/internal/modules/agenda/domain/cobranza"
	"CrediAgenda/internal/modules/agenda/domain/directorio"
	"CrediAgenda/internal/modules/agenda/domain/historial"
	"CrediAgenda/internal/modules/agenda/domain/prestamo"
	"CrediAgenda/internal/modules/agenda/domain/solicitud"
	"CrediAgenda/internal/modules/agenda/infrastructure/persistence"
	"CrediAgenda/pkg/zlog"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var GormDB *gorm.DB

func init() {
	conf := config.GetConfig()

	// The column cipher must be registered before gorm parses the schemas.
	if conf.SecurityConfig.DataKey != "" {
		cifrador, err := persistence.NewAesCifrador(conf.SecurityConfig.DataKey)
		if err != nil {
			zlog.Fatal(err.Error())
		}
		persistence.SetCifrador(cifrador)
	} else {
		persistence.SetCifrador(nil)
	}

	user := conf.MysqlConfig.User
	password := conf.MysqlConfig.Password
	host := conf.MysqlConfig.Host
	port := conf.MysqlConfig.Port
	dbName := conf.MysqlConfig.DatabaseName
	if dbName == "" {
		dbName = conf.AppName
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local", user, password, host, port, dbName)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var err error
	GormDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		zlog.Fatal(err.Error())
	}

	err = GormDB.AutoMigrate(
		&directorio.Sucursal{},
		&directorio.Usuario{},
		&directorio.Cliente{},
		&prestamo.Prestamo{},
		&solicitud.Solicitud{},
		&cobranza.Actividad{},
		&alerta.Alerta{},
		&historial.Evento{},
	)
	if err != nil {
		zlog.Fatal(err.Error())
	}
}
