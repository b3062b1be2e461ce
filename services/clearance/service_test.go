package clearance

import (
	"context"
	"errors"
	"testing"

	"campusbook/database/store"
	"campusbook/models"
)

type fakeUploader struct {
	url     string
	err     error
	folders []string
}

func (f *fakeUploader) UploadBase64(_ context.Context, _ string, folder string) (string, error) {
	f.folders = append(f.folders, folder)
	return f.url, f.err
}

func seedAdmin(t *testing.T, st store.Store, uid string, role models.Role) {
	t.Helper()
	err := st.RunTransaction(context.Background(), func(tx store.Txn) error {
		return tx.Set(store.CollUsers, uid, &models.User{UID: uid, Role: role})
	})
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
}

func TestUploadPermitRequiresPayload(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), &fakeUploader{})
	ctx := context.Background()

	if _, err := svc.UploadPermit(ctx, "a1", "", "data"); !errors.Is(err, ErrMissingPayload) {
		t.Fatalf("got %v, want ErrMissingPayload", err)
	}
	if _, err := svc.UploadPermit(ctx, "a1", "s1", ""); !errors.Is(err, ErrMissingPayload) {
		t.Fatalf("got %v, want ErrMissingPayload", err)
	}
}

func TestUploadPermitRequiresAdminRoleDocument(t *testing.T) {
	st := store.NewMemoryStore()
	up := &fakeUploader{url: "https://cdn.example/permit.png"}
	svc := NewService(st, up)
	ctx := context.Background()

	// No role document at all.
	if _, err := svc.UploadPermit(ctx, "nobody", "s1", "data"); !errors.Is(err, ErrAdminsOnly) {
		t.Fatalf("got %v, want ErrAdminsOnly", err)
	}

	seedAdmin(t, st, "c1", models.RoleCashier)
	if _, err := svc.UploadPermit(ctx, "c1", "s1", "data"); !errors.Is(err, ErrAdminsOnly) {
		t.Fatalf("cashier upload: got %v, want ErrAdminsOnly", err)
	}
	if len(up.folders) != 0 {
		t.Fatal("denied caller must not reach the uploader")
	}
}

func TestUploadPermitRecordsClearance(t *testing.T) {
	st := store.NewMemoryStore()
	up := &fakeUploader{url: "https://cdn.example/permit.png"}
	svc := NewService(st, up)
	ctx := context.Background()
	seedAdmin(t, st, "a1", models.RoleAdmin)

	url, err := svc.UploadPermit(ctx, "a1", "s1", "data:image/png;base64,AAAA")
	if err != nil {
		t.Fatalf("UploadPermit failed: %v", err)
	}
	if url != up.url {
		t.Fatalf("url = %q", url)
	}
	if len(up.folders) != 1 || up.folders[0] != "permits" {
		t.Fatalf("uploaded to folders %v, want [permits]", up.folders)
	}

	var rec models.Clearance
	found, err := st.Get(ctx, store.CollClearances, "s1", &rec)
	if err != nil || !found {
		t.Fatalf("clearance record missing: found=%v err=%v", found, err)
	}
	if !rec.PermitReady || rec.PermitURL != up.url || rec.PermitUpdatedAt == nil {
		t.Fatalf("unexpected clearance record: %+v", rec)
	}
}

func TestUploadPermitProviderFailure(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st, &fakeUploader{err: errors.New("provider down")})
	ctx := context.Background()
	seedAdmin(t, st, "a1", models.RoleAdmin)

	if _, err := svc.UploadPermit(ctx, "a1", "s1", "data"); !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("got %v, want ErrUploadFailed", err)
	}
	var rec models.Clearance
	found, _ := st.Get(ctx, store.CollClearances, "s1", &rec)
	if found {
		t.Fatal("failed upload must not write a clearance record")
	}
}
