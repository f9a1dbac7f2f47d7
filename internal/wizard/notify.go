package wizard

// Kind classifies a user-facing notification
type Kind string

const (
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notification is a toast shown to the operator
type Notification struct {
	Kind    Kind   `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier receives notifications. Delivery is fire-and-forget.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notification)

// Notify calls f(n)
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Recorder keeps notifications in emission order until drained
type Recorder struct {
	notifications []Notification
}

// Notify appends n
func (r *Recorder) Notify(n Notification) {
	r.notifications = append(r.notifications, n)
}

// Drain returns the recorded notifications and forgets them
func (r *Recorder) Drain() []Notification {
	out := r.notifications
	r.notifications = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

var (
	noticeIncomplete = Notification{
		Kind:    KindWarning,
		Title:   "Campos obrigatórios",
		Message: "Preencha todos os campos obrigatórios antes de continuar.",
	}
	noticeRegistered = Notification{
		Kind:    KindSuccess,
		Title:   "Funcionário cadastrado!",
		Message: "O funcionário foi cadastrado com sucesso.",
	}
	noticeRegisterFailed = Notification{
		Kind:    KindError,
		Title:   "Erro ao cadastrar",
		Message: "Ocorreu um erro ao cadastrar o funcionário.",
	}
	noticePhotoCaptured = Notification{
		Kind:    KindSuccess,
		Title:   "Foto capturada!",
		Message: "A foto foi capturada com sucesso.",
	}
)

type discard struct{}

func (discard) Notify(Notification) {}
