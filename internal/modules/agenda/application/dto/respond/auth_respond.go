package respond

type LoginRespond struct {
	Token      string `json:"token"`
	UsuarioID  string `json:"usuario_id"`
	Username   string `json:"username"`
	Nombre     string `json:"nombre"`
	Rol        string `json:"rol"`
	SucursalID string `json:"sucursal_id,omitempty"`
}
