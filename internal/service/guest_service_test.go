package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/marcosaureliofarias/convite-aniversario/internal/dto"
	"github.com/marcosaureliofarias/convite-aniversario/internal/model"
	apperrors "github.com/marcosaureliofarias/convite-aniversario/pkg/errors"
)

// ── Create ──

func TestGuestService_Create_Trimmed(t *testing.T) {
	svc, repo, _ := setupTestGuestService()

	guest, err := svc.Create(context.Background(), &dto.CreateGuestRequest{
		Name:  "  Ana Souza ",
		Phone: " 11999990000 ",
		Email: strPtr("  "),
		Notes: strPtr(" vegetariana "),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if guest.Name != "Ana Souza" || guest.Phone != "11999990000" {
		t.Errorf("fields not trimmed: %q %q", guest.Name, guest.Phone)
	}
	if guest.Email != nil {
		t.Errorf("blank email should be nil, got %q", *guest.Email)
	}
	if guest.Notes == nil || *guest.Notes != "vegetariana" {
		t.Errorf("notes = %v", guest.Notes)
	}
	if guest.Confirmed || guest.ConfirmedAt != nil {
		t.Error("new guest should be pending")
	}
	if guest.ID == "" || guest.InvitedAt.IsZero() {
		t.Error("id and invitedAt must be assigned")
	}
	if len(repo.guests) != 1 {
		t.Errorf("stored %d guests, want 1", len(repo.guests))
	}
}

func TestGuestService_Create_Confirmed(t *testing.T) {
	svc, _, _ := setupTestGuestService()

	guest, err := svc.Create(context.Background(), &dto.CreateGuestRequest{
		Name: "Bruno", Phone: "21988887777", Confirmed: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !guest.Confirmed || guest.ConfirmedAt == nil {
		t.Fatal("guest should be confirmed with confirmedAt")
	}
	if !guest.ConfirmedAt.Equal(guest.InvitedAt) {
		t.Errorf("confirmedAt %v != invitedAt %v", guest.ConfirmedAt, guest.InvitedAt)
	}
}

func TestGuestService_Create_Validation(t *testing.T) {
	svc, repo, _ := setupTestGuestService()

	cases := []struct {
		name  string
		req   dto.CreateGuestRequest
		field string
	}{
		{"empty name", dto.CreateGuestRequest{Name: "", Phone: "1"}, "name"},
		{"blank name", dto.CreateGuestRequest{Name: "   ", Phone: "1"}, "name"},
		{"blank phone", dto.CreateGuestRequest{Name: "Ana", Phone: " \t"}, "phone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), &tc.req)
			var verr *apperrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
	if len(repo.guests) != 0 {
		t.Errorf("invalid creates must not persist, stored %d", len(repo.guests))
	}
}

func TestGuestService_Create_StorageFailure(t *testing.T) {
	svc, repo, _ := setupTestGuestService()
	repo.err = errors.New("disk full")

	_, err := svc.Create(context.Background(), &dto.CreateGuestRequest{Name: "Ana", Phone: "1"})
	if !errors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestGuestService_Create_UniqueIDs(t *testing.T) {
	svc, _, _ := setupTestGuestService()
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		g, err := svc.Create(context.Background(), &dto.CreateGuestRequest{Name: "G", Phone: "1"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if seen[g.ID] {
			t.Fatalf("duplicate id %q", g.ID)
		}
		seen[g.ID] = true
	}
}

// ── Get ──

func TestGuestService_Get_NotFound(t *testing.T) {
	svc, _, _ := setupTestGuestService()

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, ErrGuestNotFound) {
		t.Errorf("expected ErrGuestNotFound, got %v", err)
	}
}

func TestGuestService_Get_StorageFailure(t *testing.T) {
	svc, repo, _ := setupTestGuestService()
	repo.err = errors.New("connection refused")

	_, err := svc.Get(context.Background(), "x")
	if !errors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
	if errors.Is(err, ErrGuestNotFound) {
		t.Error("storage failure must not look like not found")
	}
}

// ── Update ──

func TestGuestService_Update_ShallowMerge(t *testing.T) {
	svc, _, _ := setupTestGuestService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, &dto.CreateGuestRequest{
		Name: "Ana", Phone: "1", Email: strPtr("ana@x.com"), Notes: strPtr("mesa 3"),
	})

	updated, err := svc.Update(ctx, created.ID, &dto.UpdateGuestRequest{
		Phone: dto.Some(" 2 "),
		Notes: dto.Null[string](),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Ana" {
		t.Errorf("absent name changed to %q", updated.Name)
	}
	if updated.Phone != "2" {
		t.Errorf("phone = %q", updated.Phone)
	}
	if updated.Email == nil || *updated.Email != "ana@x.com" {
		t.Errorf("absent email changed: %v", updated.Email)
	}
	if updated.Notes != nil {
		t.Errorf("null notes should clear, got %q", *updated.Notes)
	}
	if updated.ID != created.ID || !updated.InvitedAt.Equal(created.InvitedAt) {
		t.Error("id and invitedAt must not change")
	}

	got, _ := svc.Get(ctx, created.ID)
	if got.Phone != "2" {
		t.Errorf("update not persisted, phone = %q", got.Phone)
	}
}

func TestGuestService_Update_EmptyRequiredField(t *testing.T) {
	svc, _, _ := setupTestGuestService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, &dto.CreateGuestRequest{Name: "Ana", Phone: "1"})

	for _, req := range []*dto.UpdateGuestRequest{
		{Name: dto.Some("  ")},
		{Name: dto.Null[string]()},
		{Phone: dto.Some("")},
	} {
		_, err := svc.Update(ctx, created.ID, req)
		if !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	}

	got, _ := svc.Get(ctx, created.ID)
	if got.Name != "Ana" || got.Phone != "1" {
		t.Errorf("rejected update leaked: %+v", got)
	}
}

func TestGuestService_Update_ConfirmTransitions(t *testing.T) {
	svc, _, _ := setupTestGuestService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, &dto.CreateGuestRequest{Name: "Ana", Phone: "1"})

	// confirmed:true without confirmedAt stamps now
	g, err := svc.Update(ctx, created.ID, &dto.UpdateGuestRequest{Confirmed: dto.Some(true)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !g.Confirmed || g.ConfirmedAt == nil {
		t.Fatal("expected confirmed with confirmedAt")
	}
	if g.ConfirmedAt.Before(g.InvitedAt) {
		t.Error("confirmedAt before invitedAt")
	}

	// confirmedAt alone re-dates an existing confirmation
	when := time.Date(2025, 7, 10, 18, 30, 0, 0, time.UTC)
	g, _ = svc.Update(ctx, created.ID, &dto.UpdateGuestRequest{ConfirmedAt: dto.Some(when)})
	if g.ConfirmedAt == nil || !g.ConfirmedAt.Equal(when) {
		t.Errorf("confirmedAt = %v, want %v", g.ConfirmedAt, when)
	}

	// confirmed:false clears confirmedAt
	g, _ = svc.Update(ctx, created.ID, &dto.UpdateGuestRequest{Confirmed: dto.Some(false)})
	if g.Confirmed || g.ConfirmedAt != nil {
		t.Errorf("expected pending without confirmedAt, got %+v", g)
	}

	// confirmedAt alone on a pending guest is ignored
	g, _ = svc.Update(ctx, created.ID, &dto.UpdateGuestRequest{ConfirmedAt: dto.Some(when)})
	if g.Confirmed || g.ConfirmedAt != nil {
		t.Errorf("pending guest must not gain confirmedAt, got %+v", g)
	}
}

func TestGuestService_Update_NotFound(t *testing.T) {
	svc, _, _ := setupTestGuestService()

	_, err := svc.Update(context.Background(), "missing", &dto.UpdateGuestRequest{Name: dto.Some("X")})
	if !errors.Is(err, ErrGuestNotFound) {
		t.Errorf("expected ErrGuestNotFound, got %v", err)
	}
}

// ── Confirm ──

func TestGuestService_Confirm(t *testing.T) {
	svc, _, _ := setupTestGuestService()
	ctx := context.Background()
	created, _ := svc.Create(ctx, &dto.CreateGuestRequest{Name: "Ana", Phone: "1"})

	g, err := svc.Confirm(ctx, created.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !g.Confirmed || g.ConfirmedAt == nil || !g.ConfirmedAt.After(created.InvitedAt) {
		t.Errorf("unexpected confirm result %+v", g)
	}

	if _, err := svc.Confirm(ctx, "missing"); !errors.Is(err, ErrGuestNotFound) {
		t.Errorf("expected ErrGuestNotFound, got %v", err)
	}
}

// ── Delete / Clear ──

func TestGuestService_Delete(t *testing.T) {
	svc, repo, _ := setupTestGuestService()
	ctx := context.Background()
	a, _ := svc.Create(ctx, &dto.CreateGuestRequest{Name: "A", Phone: "1"})
	b, _ := svc.Create(ctx, &dto.CreateGuestRequest{Name: "B", Phone: "2"})

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(repo.guests) != 1 || repo.guests[0].ID != b.ID {
		t.Errorf("remaining = %+v", repo.guests)
	}
	if err := svc.Delete(ctx, a.ID); !errors.Is(err, ErrGuestNotFound) {
		t.Errorf("second delete: expected ErrGuestNotFound, got %v", err)
	}
}

func TestGuestService_Clear(t *testing.T) {
	svc, repo, _ := setupTestGuestService()
	ctx := context.Background()
	_, _ = svc.Create(ctx, &dto.CreateGuestRequest{Name: "A", Phone: "1"})

	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(repo.guests) != 0 {
		t.Errorf("expected empty collection, got %d", len(repo.guests))
	}

	repo.err = errors.New("boom")
	if err := svc.Clear(ctx); !errors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}

// ── List / Stats ──

func TestGuestService_List_InsertionOrderAndFilters(t *testing.T) {
	svc, _, _ := setupTestGuestService()
	ctx := context.Background()
	_, _ = svc.Create(ctx, &dto.CreateGuestRequest{Name: "Carla", Phone: "11 3333", Email: strPtr("carla@Mail.com")})
	_, _ = svc.Create(ctx, &dto.CreateGuestRequest{Name: "Ângela", Phone: "21 4444", Confirmed: true})
	_, _ = svc.Create(ctx, &dto.CreateGuestRequest{Name: "bruno", Phone: "31 5555", Confirmed: true})

	all, err := svc.List(ctx, &dto.GuestListRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if names(all) != "Carla,Ângela,bruno" {
		t.Errorf("insertion order = %s", names(all))
	}

	got, _ := svc.List(ctx, &dto.GuestListRequest{Query: "MAIL"})
	if names(got) != "Carla" {
		t.Errorf("email query = %s", names(got))
	}
	got, _ = svc.List(ctx, &dto.GuestListRequest{Query: "4444"})
	if names(got) != "Ângela" {
		t.Errorf("phone query = %s", names(got))
	}
	pending := false
	got, _ = svc.List(ctx, &dto.GuestListRequest{Confirmed: &pending})
	if names(got) != "Carla" {
		t.Errorf("pending filter = %s", names(got))
	}

	got, _ = svc.List(ctx, &dto.GuestListRequest{Sort: "status"})
	if names(got) != "Ângela,bruno,Carla" {
		t.Errorf("status order = %s", names(got))
	}
}

func TestGuestService_ListConfirmed(t *testing.T) {
	svc, _, _ := setupTestGuestService()
	ctx := context.Background()
	_, _ = svc.Create(ctx, &dto.CreateGuestRequest{Name: "A", Phone: "1"})
	b, _ := svc.Create(ctx, &dto.CreateGuestRequest{Name: "B", Phone: "2", Confirmed: true})

	got, err := svc.ListConfirmed(ctx)
	if err != nil {
		t.Fatalf("ListConfirmed: %v", err)
	}
	if len(got) != 1 || got[0].ID != b.ID || !got[0].ConfirmedAt.Equal(*b.ConfirmedAt) {
		t.Errorf("unexpected confirmed list %+v", got)
	}
}

func TestComputeStats(t *testing.T) {
	svc, _, _ := setupTestGuestService()
	ctx := context.Background()

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 0 || stats.ConfirmationRate != 0 {
		t.Errorf("empty stats = %+v", stats)
	}

	for i, confirmed := range []bool{true, false, false, true} {
		_, _ = svc.Create(ctx, &dto.CreateGuestRequest{Name: "G", Phone: string(rune('0' + i)), Confirmed: confirmed})
	}
	stats, _ = svc.Stats(ctx)
	want := dto.InvitationStats{Total: 4, Confirmed: 2, Pending: 2, ConfirmationRate: 50}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}

// Ana is invited, confirms through the public page, then the admin
// corrects her phone; the confirmation survives and stats follow.
func TestGuestService_Scenario_InviteConfirmEdit(t *testing.T) {
	svc, _, _ := setupTestGuestService()
	ctx := context.Background()

	ana, err := svc.Create(ctx, &dto.CreateGuestRequest{Name: "Ana", Phone: "11999990000"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, _ = svc.Create(ctx, &dto.CreateGuestRequest{Name: "Beto", Phone: "11888880000"})

	confirmed, err := svc.Confirm(ctx, ana.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	edited, err := svc.Update(ctx, ana.ID, &dto.UpdateGuestRequest{Phone: dto.Some("11977770000")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !edited.Confirmed || !edited.ConfirmedAt.Equal(*confirmed.ConfirmedAt) {
		t.Errorf("phone edit changed confirmation: %+v", edited)
	}

	stats, _ := svc.Stats(ctx)
	if stats.Confirmed != 1 || stats.Pending != 1 || stats.ConfirmationRate != 50 {
		t.Errorf("stats = %+v", stats)
	}
}

// ── Import ──

func TestGuestService_Import(t *testing.T) {
	svc, repo, _ := setupTestGuestService()
	ctx := context.Background()
	_, _ = svc.Create(ctx, &dto.CreateGuestRequest{Name: "Old", Phone: "0"})

	res, err := svc.Import(ctx, &dto.ImportRequest{Guests: []dto.ImportGuestRequest{
		{Name: "A", Phone: "1"},
		{Name: "", Phone: "2"},
		{Name: "C", Phone: "3", Confirmed: true},
	}})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(repo.guests) != 2 || repo.guests[0].Name != "A" || !repo.guests[1].Confirmed {
		t.Errorf("collection after import = %+v", repo.guests)
	}
}

func TestGuestService_Import_SkipsInvalidAndReportsStorageErrors(t *testing.T) {
	svc, repo, _ := setupTestGuestService()
	ctx := context.Background()
	_, _ = svc.Create(ctx, &dto.CreateGuestRequest{Name: "Old", Phone: "0"})

	res, err := svc.Import(ctx, &dto.ImportRequest{Guests: []dto.ImportGuestRequest{
		{Name: " ", Phone: "1"},
	}})
	if err != nil || res.Imported != 0 || res.Skipped != 1 {
		t.Fatalf("Import = %+v, %v", res, err)
	}
	if len(repo.guests) != 0 {
		t.Errorf("expected empty collection, got %+v", repo.guests)
	}

	repo.err = errors.New("disk full")
	if _, err := svc.Import(ctx, &dto.ImportRequest{Guests: []dto.ImportGuestRequest{{Name: "A", Phone: "1"}}}); !errors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestGuestService_Import_KeepsTimestamps(t *testing.T) {
	svc, repo, _ := setupTestGuestService()
	ctx := context.Background()
	invitedAt := time.Date(2025, 6, 1, 9, 30, 0, 123000000, time.UTC)
	confirmedAt := time.Date(2025, 6, 3, 18, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	_, err := svc.Import(ctx, &dto.ImportRequest{Guests: []dto.ImportGuestRequest{
		{Name: "Ana", Phone: "1", Confirmed: true, InvitedAt: &invitedAt, ConfirmedAt: &confirmedAt},
		{Name: "Beto", Phone: "2", Confirmed: true, InvitedAt: &invitedAt},
		{Name: "Caio", Phone: "3", Confirmed: false, ConfirmedAt: &confirmedAt},
	}})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	ana, beto, caio := repo.guests[0], repo.guests[1], repo.guests[2]
	if !ana.InvitedAt.Equal(invitedAt) || ana.ConfirmedAt == nil || !ana.ConfirmedAt.Equal(confirmedAt) {
		t.Errorf("Ana stamps = %v / %v", ana.InvitedAt, ana.ConfirmedAt)
	}
	if ana.ConfirmedAt.Location() != time.UTC {
		t.Errorf("confirmedAt not normalized to UTC: %v", ana.ConfirmedAt)
	}
	if beto.ConfirmedAt == nil || !beto.ConfirmedAt.Equal(invitedAt) {
		t.Errorf("Beto confirmedAt = %v, want invitedAt", beto.ConfirmedAt)
	}
	if caio.ConfirmedAt != nil || caio.InvitedAt.IsZero() {
		t.Errorf("Caio = %+v", caio)
	}
}

func TestGuestService_BackupImportRoundTrip(t *testing.T) {
	exportSvc, svc, repo := setupTestExportService(t)
	ctx := context.Background()

	ana, _ := svc.Create(ctx, &dto.CreateGuestRequest{Name: "Ana", Phone: "1", Email: strPtr("ana@x.com")})
	_, _ = svc.Create(ctx, &dto.CreateGuestRequest{Name: "Beto", Phone: "2", Notes: strPtr("vegetariano")})
	if _, err := svc.Confirm(ctx, ana.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	before, _ := svc.List(ctx, nil)

	backup, _, err := exportSvc.ExportBackup(ctx)
	if err != nil {
		t.Fatalf("ExportBackup: %v", err)
	}
	data, err := json.Marshal(backup)
	if err != nil {
		t.Fatalf("marshal backup: %v", err)
	}
	var req dto.ImportRequest
	if err := json.Unmarshal(data, &req); err != nil {
		t.Fatalf("unmarshal backup: %v", err)
	}

	res, err := svc.Import(ctx, &req)
	if err != nil || res.Imported != 2 || res.Skipped != 0 {
		t.Fatalf("Import = %+v, %v", res, err)
	}

	after := repo.guests
	if len(after) != len(before) {
		t.Fatalf("len after = %d, want %d", len(after), len(before))
	}
	for i := range before {
		b, a := before[i], after[i]
		if a.Name != b.Name || a.Phone != b.Phone || a.Confirmed != b.Confirmed || !a.InvitedAt.Equal(b.InvitedAt) {
			t.Errorf("guest %d: before %+v, after %+v", i, b, a)
		}
		if (b.ConfirmedAt == nil) != (a.ConfirmedAt == nil) || (b.ConfirmedAt != nil && !a.ConfirmedAt.Equal(*b.ConfirmedAt)) {
			t.Errorf("guest %d confirmedAt: before %v, after %v", i, b.ConfirmedAt, a.ConfirmedAt)
		}
		if deref(a.Email) != deref(b.Email) || deref(a.Notes) != deref(b.Notes) {
			t.Errorf("guest %d optional fields changed", i)
		}
	}
}

func names(guests []model.Guest) string {
	s := ""
	for i, g := range guests {
		if i > 0 {
			s += ","
		}
		s += g.Name
	}
	return s
}
