package services_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"
	"umbrella-relay/internal/models"
	"umbrella-relay/internal/services"
)

type fakeDirectory struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	failWith error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{accounts: make(map[string]*models.Account)}
}

func (d *fakeDirectory) put(account *models.Account) {
	d.mu.Lock()
	defer d.mu.Unlock()
	copied := *account
	d.accounts[account.Email] = &copied
}

func (d *fakeDirectory) get(email string) *models.Account {
	d.mu.Lock()
	defer d.mu.Unlock()
	account, ok := d.accounts[email]
	if !ok {
		return nil
	}
	copied := *account
	return &copied
}

func (d *fakeDirectory) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return nil, d.failWith
	}
	account, ok := d.accounts[email]
	if !ok {
		return nil, services.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (d *fakeDirectory) UpsertCode(_ context.Context, email, code string, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return d.failWith
	}
	account, ok := d.accounts[email]
	if !ok {
		account = &models.Account{Email: email}
		d.accounts[email] = account
	}
	account.OtpCode = code
	account.OtpExpiresAt = &expiresAt
	return nil
}

func (d *fakeDirectory) CompleteRegistration(_ context.Context, email, passwordHash, emergencyEmail string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	account, ok := d.accounts[email]
	if !ok {
		return services.ErrAccountNotFound
	}
	account.PasswordHash = passwordHash
	account.EmergencyEmail = emergencyEmail
	account.OtpCode = ""
	account.OtpExpiresAt = nil
	return nil
}

func (d *fakeDirectory) UpdateEmergencyEmail(_ context.Context, email, emergencyEmail string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	account, ok := d.accounts[email]
	if !ok {
		return services.ErrAccountNotFound
	}
	account.EmergencyEmail = emergencyEmail
	return nil
}

type sentMail struct {
	Recipient string
	Subject   string
	Body      string
}

type recordingNotifier struct {
	mu       sync.Mutex
	sent     []sentMail
	failWith error
}

func (n *recordingNotifier) Send(recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return n.failWith
	}
	n.sent = append(n.sent, sentMail{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

func (n *recordingNotifier) sentMails() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMail(nil), n.sent...)
}

type publishedMessage struct {
	Topic    string
	Payload  []byte
	Retained bool
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []publishedMessage
}

func (p *recordingPublisher) Publish(topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedMessage{Topic: topic, Payload: payload})
	return nil
}

func (p *recordingPublisher) PublishRetainedJson(topic string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedMessage{Topic: topic, Payload: payload, Retained: true})
	return nil
}

type recordingBroadcaster struct {
	mu        sync.Mutex
	positions []models.Position
	statuses  []string
}

func (b *recordingBroadcaster) BroadcastPosition(position models.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions = append(b.positions, position)
}

func (b *recordingBroadcaster) BroadcastStatus(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = append(b.statuses, text)
}

type recordingTelemetry struct {
	mu        sync.Mutex
	positions []models.Position
	weather   []models.WeatherEvent
}

func (t *recordingTelemetry) WritePosition(position models.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.positions = append(t.positions, position)
}

func (t *recordingTelemetry) WriteWeather(event models.WeatherEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.weather = append(t.weather, event)
}
