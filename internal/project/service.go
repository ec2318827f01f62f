// Package project holds the project currently open in the editor and
// notifies interested parties when it is replaced.
package project

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hmi-editor/backend/internal/models"
	"github.com/hmi-editor/backend/internal/storage"
	"github.com/hmi-editor/backend/internal/tagoptions"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrAlreadyUnsubscribed is returned by a second Unsubscribe.
	ErrAlreadyUnsubscribed = errors.New("already unsubscribed")
	// ErrNotFound is returned for unknown devices or tags.
	ErrNotFound = errors.New("not found")
)

// Service guards the current project. It satisfies tagoptions.ScriptSource.
type Service struct {
	mu      sync.RWMutex
	project *models.ProjectData
	store   storage.Store
	log     *logrus.Entry

	subMu  sync.Mutex
	nextID int
	subs   map[int]func()
}

var _ tagoptions.ScriptSource = (*Service)(nil)

// NewService starts with an empty project.
func NewService(store storage.Store, log *logrus.Entry) *Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		project: models.NewProjectData(),
		store:   store,
		log:     log,
		subs:    make(map[int]func()),
	}
}

// Project returns a deep copy of the current project.
func (s *Service) Project() (*models.ProjectData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.project)
}

// GetScripts returns a copy of the project scripts.
func (s *Service) GetScripts() []models.Script {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Script, len(s.project.Scripts))
	for i, sc := range s.project.Scripts {
		sc.Parameters = append([]models.ScriptParam(nil), sc.Parameters...)
		out[i] = sc
	}
	return out
}

// SubscribeLoad registers fn to run after every Load or SetScripts.
func (s *Service) SubscribeLoad(fn func()) tagoptions.Subscription {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	return &subscription{svc: s, id: id}
}

// Subscribers returns the number of active load subscriptions.
func (s *Service) Subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

type subscription struct {
	svc  *Service
	id   int
	once sync.Once
}

func (sub *subscription) Unsubscribe() error {
	err := ErrAlreadyUnsubscribed
	sub.once.Do(func() {
		sub.svc.subMu.Lock()
		delete(sub.svc.subs, sub.id)
		sub.svc.subMu.Unlock()
		err = nil
	})
	return err
}

func (s *Service) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	s.log.Debugf("notifying %d subscribers of project load", len(fns))
	for _, fn := range fns {
		fn()
	}
}

// Load replaces the current project and notifies subscribers.
func (s *Service) Load(p *models.ProjectData) error {
	if p == nil {
		return errors.New("nil project")
	}
	next, err := clone(p)
	if err != nil {
		return errors.Wrap(err, "load project")
	}
	s.mu.Lock()
	s.project = next
	s.mu.Unlock()

	s.log.WithField("devices", len(next.Devices)).Info("project loaded")
	s.notify()
	return nil
}

// LoadSnapshot loads a stored snapshot as the current project.
func (s *Service) LoadSnapshot(id string) (*models.SnapshotInfo, error) {
	info, err := s.store.Get(id)
	if err != nil {
		return nil, errors.Wrapf(err, "load snapshot %s", id)
	}
	p, err := s.store.Load(id)
	if err != nil {
		return nil, errors.Wrapf(err, "load snapshot %s", id)
	}
	if err := s.Load(p); err != nil {
		return nil, err
	}
	return info, nil
}

// SaveSnapshot stores the current project under name.
func (s *Service) SaveSnapshot(name string) (*models.SnapshotInfo, error) {
	s.mu.RLock()
	info, err := s.store.Save(name, s.project)
	s.mu.RUnlock()
	if err != nil {
		return nil, errors.Wrap(err, "save snapshot")
	}
	return info, nil
}

// SetScripts replaces the project scripts and notifies subscribers.
func (s *Service) SetScripts(scripts []models.Script) {
	if scripts == nil {
		scripts = make([]models.Script, 0)
	}
	s.mu.Lock()
	s.project.Scripts = scripts
	s.mu.Unlock()
	s.notify()
}

// Apply edits the project with a command.
func (s *Service) Apply(cmd models.ProjectDataCmdType, payload json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.project.Apply(cmd, payload); err != nil {
		return errors.Wrap(err, "apply command")
	}
	return nil
}

// Tags resolves tag ids of a device. The returned tags are copies.
func (s *Service) Tags(deviceID string, tagIDs []string) (*models.Device, []*models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dev, tags, err := s.lookup(deviceID, tagIDs)
	if err != nil {
		return nil, nil, err
	}
	devCopy := *dev
	devCopy.Tags = nil
	out := make([]*models.Tag, len(tags))
	for i, t := range tags {
		c := *t
		out[i] = &c
	}
	return &devCopy, out, nil
}

// ApplyTagOption writes a confirmed option onto every selected tag. Nothing
// is written if any id is unknown.
func (s *Service) ApplyTagOption(deviceID string, tagIDs []string, opt *models.TagOption) error {
	if opt == nil {
		return errors.New("nil tag option")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, tags, err := s.lookup(deviceID, tagIDs)
	if err != nil {
		return err
	}
	for _, t := range tags {
		opt.ApplyTo(t)
	}
	s.log.WithFields(logrus.Fields{"device": deviceID, "tags": len(tags)}).Info("tag options applied")
	return nil
}

func (s *Service) lookup(deviceID string, tagIDs []string) (*models.Device, []*models.Tag, error) {
	dev, ok := s.project.Device(deviceID)
	if !ok || dev == nil {
		return nil, nil, errors.Wrapf(ErrNotFound, "device %s", deviceID)
	}
	tags := make([]*models.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		t, ok := dev.Tags[id]
		if !ok || t == nil {
			return nil, nil, errors.Wrapf(ErrNotFound, "tag %s on device %s", id, deviceID)
		}
		tags = append(tags, t)
	}
	return dev, tags, nil
}

func clone(p *models.ProjectData) (*models.ProjectData, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}
	var out models.ProjectData
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding project: %w", err)
	}
	out.Normalize()
	return &out, nil
}
