package directorio

import (
	"time"
)

// Staff roles.
const (
	RolOficialCredito = "OFICIAL_CREDITO"
	RolGestorCobranza = "GESTOR_COBRANZA"
	RolSupervisor     = "SUPERVISOR"
	RolAdministrador  = "ADMINISTRADOR"
)

// Cliente is the customer reference record the agenda links against.
type Cliente struct {
	ID             string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	NombreCompleto string    `gorm:"column:nombre_completo;not null;type:varchar(200)"`
	Identificacion string    `gorm:"column:identificacion;uniqueIndex;type:varchar(30)"`
	Telefono       string    `gorm:"column:telefono;type:varchar(20)"`
	Email          string    `gorm:"column:email;type:varchar(100)"`
	Direccion      string    `gorm:"column:direccion;type:varchar(500)"`
	SucursalID     string    `gorm:"column:sucursal_id;index;type:varchar(64)"`
	Activo         bool      `gorm:"column:activo;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (Cliente) TableName() string {
	return "clientes"
}

// Usuario is a staff member who owns work items and receives alerts.
type Usuario struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Username   string    `gorm:"column:username;uniqueIndex;not null;type:varchar(50)"`
	Password   string    `gorm:"column:password;not null;type:varchar(100)"`
	Nombre     string    `gorm:"column:nombre;not null;type:varchar(100)"`
	Email      string    `gorm:"column:email;type:varchar(100)"`
	Telefono   string    `gorm:"column:telefono;type:varchar(20)"`
	Rol        string    `gorm:"column:rol;index;not null;default:OFICIAL_CREDITO;type:varchar(30)"`
	SucursalID string    `gorm:"column:sucursal_id;index;type:varchar(64)"`
	Activo     bool      `gorm:"column:activo;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (Usuario) TableName() string {
	return "usuarios"
}

// Sucursal is a branch office.
type Sucursal struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Codigo    string    `gorm:"column:codigo;uniqueIndex;not null;type:varchar(10)"`
	Nombre    string    `gorm:"column:nombre;not null;type:varchar(100)"`
	Telefono  string    `gorm:"column:telefono;type:varchar(20)"`
	Direccion string    `gorm:"column:direccion;type:varchar(500)"`
	Activo    bool      `gorm:"column:activo;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Sucursal) TableName() string {
	return "sucursales"
}
