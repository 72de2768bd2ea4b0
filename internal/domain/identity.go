package domain

const (
	RoleClient  = "CLIENT"
	RoleSupport = "SUPPORT"
)

// Identity es la identidad autenticada de una request: se deriva del
// credential en cada llamada y nunca se persiste.
type Identity struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (i Identity) IsClient() bool  { return i.Role == RoleClient }
func (i Identity) IsSupport() bool { return i.Role == RoleSupport }

// CanAccessThread decide si una identidad puede leer un hilo. Un CLIENT
// solo ve hilos propios; un SUPPORT ve hilos sin asignar o asignados a si
// mismo.
func CanAccessThread(t Thread, id Identity) bool {
	if id.IsSupport() {
		return t.AssignedSupportUserID == "" || t.AssignedSupportUserID == id.UserID
	}
	return id.IsClient() && t.CreatedByUserID == id.UserID
}

// CanWriteThread decide si una identidad puede escribir (mensajes o typing)
// en un hilo. Un hilo CLOSED no acepta escrituras, y un SUPPORT no puede
// escribir en un hilo que todavia no reclamo.
func CanWriteThread(t Thread, id Identity) bool {
	if !CanAccessThread(t, id) {
		return false
	}
	if t.Status == ThreadStatusClosed {
		return false
	}
	if id.IsSupport() && t.AssignedSupportUserID != id.UserID {
		return false
	}
	return true
}
