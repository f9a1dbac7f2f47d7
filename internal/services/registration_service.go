package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cityhall/employee-registry/internal/metrics"
	"github.com/cityhall/employee-registry/internal/models"
	"github.com/cityhall/employee-registry/internal/session"
	"github.com/cityhall/employee-registry/internal/wizard"
	"github.com/cityhall/employee-registry/pkg/photo"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidPhoto is returned when a photo written to the draft cannot be normalised
var ErrInvalidPhoto = errors.New("invalid photo")

// ReferenceSource provides the lookup lists behind the registration selects
type ReferenceSource interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	ListSponsors(ctx context.Context) ([]models.Sponsor, error)
}

// RegistrationResult is what every wizard operation hands back: the session,
// the view of the active step and the notifications raised by the operation
type RegistrationResult struct {
	SessionID     string                `json:"session_id"`
	Accepted      bool                  `json:"accepted"`
	View          wizard.View           `json:"view"`
	Notifications []wizard.Notification `json:"notifications"`
	Employee      *models.Employee      `json:"employee,omitempty"`
}

// RegistrationConfig holds the photo limits applied to every stored photo
type RegistrationConfig struct {
	PhotoSize      int
	PhotoMaxBytes  int
	PhotoMaxPixels int
}

// RegistrationService runs registration wizards stored in a session store.
// Operations on one session are serialised; different sessions run in parallel.
type RegistrationService struct {
	sessions   session.Store
	references ReferenceSource
	records    wizard.RecordStore
	metrics    *metrics.Metrics
	logger     *logrus.Logger
	config     RegistrationConfig
	now        func() time.Time
	locks      *sessionLocks
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(
	sessions session.Store,
	references ReferenceSource,
	records wizard.RecordStore,
	m *metrics.Metrics,
	logger *logrus.Logger,
	cfg RegistrationConfig,
) *RegistrationService {
	return &RegistrationService{
		sessions:   sessions,
		references: references,
		records:    records,
		metrics:    m,
		logger:     logger,
		config:     cfg,
		now:        time.Now,
		locks:      newSessionLocks(),
	}
}

// Start loads the lookup lists and opens a new wizard session on step 1
func (s *RegistrationService) Start(ctx context.Context) (*RegistrationResult, error) {
	refs, err := s.loadReferences(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load registration lookup lists")
		return nil, err
	}

	now := s.now()
	sess := &session.Session{
		ID:         uuid.New().String(),
		State:      wizard.InitialState(),
		References: refs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.logger.WithError(err).Error("Failed to save registration session")
		return nil, err
	}

	s.metrics.IncrementSessionsStarted()
	s.logger.WithFields(logrus.Fields{
		"session_id":  sess.ID,
		"roles":       len(refs.Roles),
		"departments": len(refs.Departments),
		"sponsors":    len(refs.Sponsors),
	}).Info("Registration session started")

	w := wizard.Restore(sess.State, wizard.Deps{References: refs})
	return &RegistrationResult{
		SessionID:     sess.ID,
		Accepted:      true,
		View:          w.View(),
		Notifications: []wizard.Notification{},
	}, nil
}

func (s *RegistrationService) loadReferences(ctx context.Context) (wizard.References, error) {
	var (
		roles       []models.Role
		departments []models.Department
		sponsors    []models.Sponsor
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roles, err = s.references.ListRoles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		departments, err = s.references.ListDepartments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sponsors, err = s.references.ListSponsors(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return wizard.References{}, fmt.Errorf("failed to load lookup lists: %w", err)
	}

	refs := wizard.References{
		Roles:       make([]models.Reference, 0, len(roles)),
		Departments: make([]models.Reference, 0, len(departments)),
		Sponsors:    make([]models.Reference, 0, len(sponsors)),
	}
	for _, r := range roles {
		refs.Roles = append(refs.Roles, r.Reference())
	}
	for _, d := range departments {
		refs.Departments = append(refs.Departments, d.Reference())
	}
	for _, sp := range sponsors {
		refs.Sponsors = append(refs.Sponsors, sp.Reference())
	}
	return refs, nil
}

// View returns the active step of a session
func (s *RegistrationService) View(ctx context.Context, id string) (*RegistrationResult, error) {
	return s.run(ctx, id, false, func(w *wizard.Wizard, _ *RegistrationResult) error {
		return nil
	})
}

// SetFields overwrites draft fields; a nil value clears the field. Unknown
// names and unreadable photos reject the whole batch before anything is
// written. A photo goes through the same normalisation as a capture.
func (s *RegistrationService) SetFields(ctx context.Context, id string, fields map[wizard.Field]*string) (*RegistrationResult, error) {
	values := make(map[wizard.Field]*string, len(fields))
	for name, value := range fields {
		if !wizard.KnownField(name) {
			return nil, fmt.Errorf("%w: %s", wizard.ErrUnknownField, name)
		}
		values[name] = value
	}

	if value := values[wizard.FieldPhoto]; value != nil && *value != "" {
		normalized, err := s.photoDevice(*value).Capture(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
		}
		values[wizard.FieldPhoto] = &normalized
	}

	return s.run(ctx, id, true, func(w *wizard.Wizard, _ *RegistrationResult) error {
		for name, value := range values {
			if err := w.SetField(name, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Next advances the wizard when the active step is complete
func (s *RegistrationService) Next(ctx context.Context, id string) (*RegistrationResult, error) {
	return s.run(ctx, id, true, func(w *wizard.Wizard, res *RegistrationResult) error {
		from := w.Step()
		res.Accepted = w.Next()
		switch {
		case !res.Accepted:
			s.metrics.IncrementBlockedAdvance(int(from))
		case w.Step() != from:
			s.metrics.ObserveTransition("forward", int(w.Step()))
		}
		return nil
	})
}

// Back returns to the previous step
func (s *RegistrationService) Back(ctx context.Context, id string) (*RegistrationResult, error) {
	return s.run(ctx, id, true, func(w *wizard.Wizard, _ *RegistrationResult) error {
		from := w.Step()
		w.Back()
		if w.Step() != from {
			s.metrics.ObserveTransition("back", int(w.Step()))
		}
		return nil
	})
}

// OpenCamera shows the photo capture panel
func (s *RegistrationService) OpenCamera(ctx context.Context, id string) (*RegistrationResult, error) {
	return s.run(ctx, id, true, func(w *wizard.Wizard, res *RegistrationResult) error {
		res.Accepted = w.OpenCamera()
		return nil
	})
}

// CloseCamera hides the photo capture panel
func (s *RegistrationService) CloseCamera(ctx context.Context, id string) (*RegistrationResult, error) {
	return s.run(ctx, id, true, func(w *wizard.Wizard, _ *RegistrationResult) error {
		w.CloseCamera()
		return nil
	})
}

// Capture stores the frame taken by the client camera as the employee photo
func (s *RegistrationService) Capture(ctx context.Context, id, image string) (*RegistrationResult, error) {
	return s.run(ctx, id, true, func(w *wizard.Wizard, res *RegistrationResult) error {
		device := &loggingDevice{
			device: s.photoDevice(image),
			logger: s.logger.WithField("session_id", id),
		}
		res.Accepted = w.Capture(ctx, device)
		s.metrics.ObserveCapture(res.Accepted)
		return nil
	})
}

func (s *RegistrationService) photoDevice(payload string) photo.Device {
	return photo.Device{
		Payload:   payload,
		Size:      s.config.PhotoSize,
		MaxBytes:  s.config.PhotoMaxBytes,
		MaxPixels: s.config.PhotoMaxPixels,
	}
}

// Submit creates the employee record from the draft. On success the session
// starts over on an empty step 1.
func (s *RegistrationService) Submit(ctx context.Context, id string) (*RegistrationResult, error) {
	return s.run(ctx, id, true, func(w *wizard.Wizard, res *RegistrationResult) error {
		start := s.now()
		employee, err := w.Submit(ctx)
		elapsed := s.now().Sub(start).Seconds()

		outcome := submissionOutcome(err)
		s.metrics.ObserveSubmission(outcome, elapsed)

		log := s.logger.WithFields(logrus.Fields{
			"session_id": id,
			"outcome":    outcome,
		})
		if err != nil {
			if outcome == metrics.OutcomeFailed {
				log.WithError(err).Error("Employee registration failed")
			} else {
				log.WithError(err).Warn("Employee registration rejected")
			}
			return err
		}

		log.WithField("employee_id", employee.ID).Info("Employee registered")
		res.Accepted = true
		res.Employee = employee
		return nil
	})
}

// Abandon discards the session and its draft
func (s *RegistrationService) Abandon(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := s.sessions.Get(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		s.logger.WithError(err).WithField("session_id", id).Error("Failed to delete registration session")
		return err
	}

	s.metrics.IncrementSessionsAbandoned()
	s.logger.WithField("session_id", id).Info("Registration session abandoned")
	return nil
}

// run loads a session, applies op to its wizard and stores the new state when
// persist is set. The result is returned even when op fails so callers can
// show the notifications it raised. Once an employee has been created the
// outcome stands even if the session cannot be saved; the stale session is
// discarded so its draft cannot be submitted twice.
func (s *RegistrationService) run(
	ctx context.Context,
	id string,
	persist bool,
	op func(w *wizard.Wizard, res *RegistrationResult) error,
) (*RegistrationResult, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	recorder := &wizard.Recorder{}
	w := wizard.Restore(sess.State, wizard.Deps{
		References: sess.References,
		Submission: wizard.NewSubmitter(s.records, sess.References.Roles, wizard.WithClock(s.now)),
		Notifier:   recorder,
	})

	res := &RegistrationResult{SessionID: id, Accepted: true}
	opErr := op(w, res)

	if persist {
		sess.State = w.State()
		sess.UpdatedAt = s.now()
		if err := s.sessions.Save(ctx, sess); err != nil {
			log := s.logger.WithError(err).WithField("session_id", id)
			if res.Employee == nil {
				log.Error("Failed to save registration session")
				return nil, err
			}
			log.WithField("employee_id", res.Employee.ID).Error("Failed to save registration session after submit, discarding it")
			if delErr := s.sessions.Delete(ctx, id); delErr != nil {
				log.WithField("delete_error", delErr.Error()).Error("Failed to discard submitted registration session")
			}
		}
	}

	res.View = w.View()
	res.Notifications = recorder.Drain()
	return res, opErr
}

func submissionOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeCreated
	case errors.Is(err, wizard.ErrStepIncomplete):
		return metrics.OutcomeIncomplete
	case errors.Is(err, wizard.ErrSubmissionFailed):
		return metrics.OutcomeFailed
	default:
		return metrics.OutcomeRejected
	}
}

// loggingDevice reports why a capture produced no photo
type loggingDevice struct {
	device wizard.CaptureDevice
	logger *logrus.Entry
}

func (d *loggingDevice) Capture(ctx context.Context) (string, error) {
	payload, err := d.device.Capture(ctx)
	if err != nil {
		d.logger.WithError(err).Warn("Photo capture discarded")
	}
	return payload, err
}

// sessionLocks is a keyed mutex. Entries are dropped once nobody holds or
// waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &sessionLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
