package broadcast

import "sync"

// Publisher es la capacidad de fanout que se inyecta en los servicios: el
// core decide a que topics publicar, el Publisher solo entrega. Las reglas de
// acceso se aplican siempre antes de llamar Publish, nunca adentro.
type Publisher interface {
	Publish(topic string, payload any)
}

// Envelope es lo que recibe cada suscriptor: el topic y el payload publicado.
type Envelope struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// Hub reparte publicaciones en proceso. Entrega best-effort: si el canal de
// un suscriptor esta lleno el mensaje se descarta para ese suscriptor, nunca
// se bloquea al publicador ni al resto.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Subscriber]struct{})}
}

// Subscriber recibe por un unico canal los envelopes de todos los topics a
// los que esta adjunto.
type Subscriber struct {
	hub    *Hub
	ch     chan Envelope
	mu     sync.Mutex
	topics map[string]struct{}
	closed bool
}

// NewSubscriber crea un suscriptor sin topics, con el buffer indicado.
func (h *Hub) NewSubscriber(buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = 64
	}
	return &Subscriber{
		hub:    h,
		ch:     make(chan Envelope, buffer),
		topics: make(map[string]struct{}),
	}
}

// Publish entrega el payload a los suscriptores adjuntos al topic en este
// momento. Publicar a un topic sin suscriptores es un no-op.
func (h *Hub) Publish(topic string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.topics[topic] {
		select {
		case sub.ch <- Envelope{Topic: topic, Payload: payload}:
		default:
			// Suscriptor lento: se pierde este envelope.
		}
	}
}

func (s *Subscriber) Subscribe(topic string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.topics[topic] = struct{}{}
	s.mu.Unlock()

	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	// Un Close concurrente pudo cerrar el canal entre ambos locks; adjuntar
	// un canal cerrado dejaria a Publish en panico.
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	subs, ok := s.hub.topics[topic]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		s.hub.topics[topic] = subs
	}
	subs[s] = struct{}{}
}

func (s *Subscriber) Unsubscribe(topic string) {
	s.mu.Lock()
	delete(s.topics, topic)
	s.mu.Unlock()

	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.detach(s, topic)
}

// C es el canal de lectura del suscriptor; se cierra con Close.
func (s *Subscriber) C() <-chan Envelope {
	return s.ch
}

// Close desadjunta el suscriptor de todos sus topics y cierra el canal.
// Idempotente.
func (s *Subscriber) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	topics := make([]string, 0, len(s.topics))
	for topic := range s.topics {
		topics = append(topics, topic)
	}
	s.topics = make(map[string]struct{})
	s.mu.Unlock()

	// El lock exclusivo del hub garantiza que ningun Publish en curso siga
	// apuntando al canal cuando lo cerramos.
	s.hub.mu.Lock()
	for _, topic := range topics {
		s.hub.detach(s, topic)
	}
	s.hub.mu.Unlock()

	close(s.ch)
}

// detach se llama con hub.mu tomado en exclusiva.
func (h *Hub) detach(s *Subscriber, topic string) {
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}
