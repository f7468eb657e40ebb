package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/marcosaureliofarias/convite-aniversario/config"
	"github.com/marcosaureliofarias/convite-aniversario/internal/dto"
	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
	"github.com/marcosaureliofarias/convite-aniversario/internal/repository"
	apperrors "github.com/marcosaureliofarias/convite-aniversario/pkg/errors"
)

// ── export errors ──

var (
	ErrExportGenerateFail = errors.New("failed to generate export file")
	ErrInviteURLMissing   = errors.New("event.invite_url is not configured")
)

const (
	rosterSheet = "Convidados"
	statsSheet  = "Resumo"
)

// ExportService backup and document exports of the guest list.
// File contents are returned as bytes; the handler sets the HTTP headers.
type ExportService interface {
	// ExportBackup full JSON backup of event, stats and guests
	ExportBackup(ctx context.Context) (*dto.Backup, string, error)
	// ExportRoster guest roster as Excel (.xlsx)
	ExportRoster(ctx context.Context) (*bytes.Buffer, string, error)
	// ExportCalendar iCalendar invite for the event
	ExportCalendar() ([]byte, string, error)
	// InviteLink registration link; personal (?guest=<id>) when guestID is set
	InviteLink(ctx context.Context, guestID string) (string, error)
	// InviteQRCode PNG QR code of InviteLink
	InviteQRCode(ctx context.Context, guestID string, size int) ([]byte, string, error)
}

type exportService struct {
	repo   *repository.Repository
	event  *config.EventConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, event *config.EventConfig, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, event: event, logger: logger, now: time.Now}
}

// ────────────────────── Backup ──────────────────────

func (s *exportService) ExportBackup(ctx context.Context) (*dto.Backup, string, error) {
	guests, err := s.listGuests(ctx)
	if err != nil {
		return nil, "", err
	}

	start, err := s.event.Start()
	if err != nil {
		return nil, "", fmt.Errorf("event start: %w", err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	backup := &dto.Backup{
		Event: dto.EventInfo{
			Name:     s.event.Name,
			StartsAt: start,
			Location: s.event.Location,
			Host:     s.event.Host,
		},
		Stats:      ComputeStats(guests),
		Guests:     guests,
		ExportedAt: now,
	}
	return backup, BackupFilename(now), nil
}

// BackupFilename convidados-aniversario-YYYY-MM-DD.json
func BackupFilename(at time.Time) string {
	return fmt.Sprintf("convidados-aniversario-%s.json", at.Format("2006-01-02"))
}

// ────────────────────── Roster ──────────────────────
//
// Sheet "Convidados": one row per guest in admin order (confirmed first)
// Sheet "Resumo":     invitation stats

func (s *exportService) ExportRoster(ctx context.Context) (*bytes.Buffer, string, error) {
	guests, err := s.listGuests(ctx)
	if err != nil {
		return nil, "", err
	}
	stats := ComputeStats(guests)
	SortByStatus(guests)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rosterSheet); err != nil {
		s.logger.Error("create roster sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	// column widths
	f.SetColWidth(rosterSheet, "A", "A", 28)
	f.SetColWidth(rosterSheet, "B", "B", 18)
	f.SetColWidth(rosterSheet, "C", "C", 28)
	f.SetColWidth(rosterSheet, "D", "D", 14)
	f.SetColWidth(rosterSheet, "E", "F", 20)
	f.SetColWidth(rosterSheet, "G", "G", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#8E44AD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// header
	header := []interface{}{"Nome", "Telefone", "E-mail", "Status", "Convidado em", "Confirmado em", "Observações"}
	f.SetSheetRow(rosterSheet, "A1", &header)
	f.SetCellStyle(rosterSheet, "A1", "G1", headerStyle)

	// rows
	row := 2
	for i := range guests {
		values := rosterRow(&guests[i])
		f.SetSheetRow(rosterSheet, cell("A", row), &values)
		row++
	}

	// stats sheet
	if _, err := f.NewSheet(statsSheet); err != nil {
		s.logger.Error("create stats sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetColWidth(statsSheet, "A", "A", 24)
	summary := [][]interface{}{
		{"Evento", s.event.Name},
		{"Total de convidados", stats.Total},
		{"Confirmados", stats.Confirmed},
		{"Pendentes", stats.Pending},
		{"Taxa de confirmação (%)", fmt.Sprintf("%.1f", stats.ConfirmationRate)},
	}
	for i := range summary {
		f.SetSheetRow(statsSheet, cell("A", i+1), &summary[i])
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write excel failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("convidados-aniversario-%s.xlsx", s.now().UTC().Format("2006-01-02"))
	return buf, filename, nil
}

func rosterRow(g *model.Guest) []interface{} {
	status := "Pendente"
	confirmedAt := ""
	if g.Confirmed {
		status = "Confirmado"
		if g.ConfirmedAt != nil {
			confirmedAt = g.ConfirmedAt.Format("02/01/2006 15:04")
		}
	}
	return []interface{}{
		g.Name,
		g.Phone,
		deref(g.Email),
		status,
		g.InvitedAt.Format("02/01/2006 15:04"),
		confirmedAt,
		deref(g.Notes),
	}
}

// ────────────────────── Calendar ──────────────────────

func (s *exportService) ExportCalendar() ([]byte, string, error) {
	start, err := s.event.Start()
	if err != nil {
		return nil, "", fmt.Errorf("event start: %w", err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//convite-aniversario//guest list//PT")

	evt := cal.AddEvent(fmt.Sprintf("%d@convite-aniversario", start.Unix()))
	evt.SetDtStampTime(s.now().UTC())
	evt.SetStartAt(start)
	evt.SetEndAt(start.Add(s.event.Duration))
	evt.SetSummary(s.event.Name)
	evt.SetLocation(s.event.Location)
	if s.event.Host != "" {
		evt.SetDescription(fmt.Sprintf("Você está convidado! Anfitrião: %s", s.event.Host))
	}

	return []byte(cal.Serialize()), "convite-aniversario.ics", nil
}

// ────────────────────── Invite QR code ──────────────────────

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

func (s *exportService) InviteLink(ctx context.Context, guestID string) (string, error) {
	if s.event.InviteURL == "" {
		return "", ErrInviteURLMissing
	}
	u, err := url.Parse(s.event.InviteURL)
	if err != nil {
		return "", fmt.Errorf("parse invite url: %w", err)
	}
	if guestID == "" {
		return u.String(), nil
	}

	if _, err := s.repo.Guest.GetByID(ctx, guestID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrGuestNotFound
		}
		s.logger.Error("get guest failed", zap.String("id", guestID), zap.Error(err))
		return "", apperrors.Unavailable("get guest", err)
	}

	q := u.Query()
	q.Set("guest", guestID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *exportService) InviteQRCode(ctx context.Context, guestID string, size int) ([]byte, string, error) {
	link, err := s.InviteLink(ctx, guestID)
	if err != nil {
		return nil, "", err
	}

	if size <= 0 {
		size = defaultQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}

	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		s.logger.Error("encode qr code failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := "convite.png"
	if guestID != "" {
		filename = fmt.Sprintf("convite-%s.png", guestID)
	}
	return png, filename, nil
}

// ── helpers ──

func (s *exportService) listGuests(ctx context.Context) ([]model.Guest, error) {
	guests, err := s.repo.Guest.List(ctx)
	if err != nil {
		s.logger.Error("list guests failed", zap.Error(err))
		return nil, apperrors.Unavailable("list guests", err)
	}
	return guests, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
