package profile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userprofile-api/internal/user"
)

// --- fakes ---

type fakeProfileRepo struct {
	byID map[uuid.UUID]*Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byID: make(map[uuid.UUID]*Profile)}
}

func (f *fakeProfileRepo) checkUnique(p *Profile) error {
	for _, other := range f.byID {
		if other.ID == p.ID {
			continue
		}
		if other.UserID == p.UserID {
			return ErrAlreadyExists
		}
		if other.Mobile == p.Mobile {
			return ErrDuplicateMobile
		}
		if other.Email == p.Email {
			return ErrDuplicateEmail
		}
	}
	return nil
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *Profile) (*Profile, error) {
	stored := *p
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	if err := f.checkUnique(&stored); err != nil {
		return nil, err
	}
	f.byID[stored.ID] = &stored
	created := stored
	return &created, nil
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	for _, p := range f.byID {
		if p.UserID == userID {
			found := *p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	for _, p := range f.byID {
		if p.Email == email {
			found := *p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeProfileRepo) GetByMobile(ctx context.Context, mobile string) (*Profile, error) {
	for _, p := range f.byID {
		if p.Mobile == mobile {
			found := *p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeProfileRepo) Update(ctx context.Context, p *Profile) (*Profile, error) {
	if _, ok := f.byID[p.ID]; !ok {
		return nil, ErrNotFound
	}
	if err := f.checkUnique(p); err != nil {
		return nil, err
	}
	stored := *p
	stored.UpdatedAt = time.Now()
	f.byID[stored.ID] = &stored
	updated := stored
	return &updated, nil
}

func (f *fakeProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeUserRepo struct {
	byID map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[uuid.UUID]*user.User)}
}

func (f *fakeUserRepo) add(email string) *user.User {
	u := &user.User{ID: uuid.New(), Email: email}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	return NewService(newFakeProfileRepo(), users), users
}

func validInput() CreateInput {
	return CreateInput{
		Name:        "Alice",
		Mobile:      "0123456789",
		Email:       "alice@x.com",
		Gender:      GenderFemale,
		DateOfBirth: "1990-04-15",
	}
}

func strPtr(s string) *string { return &s }

// --- tests ---

func TestCreateProfile(t *testing.T) {
	svc, users := newTestService(t)
	u := users.add("a@x.com")

	p, err := svc.Create(context.Background(), u.ID, validInput())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "1990-04-15", p.DateOfBirth.Format(DateLayout))
}

func TestCreateProfileNormalizesEmail(t *testing.T) {
	svc, users := newTestService(t)
	u := users.add("a@x.com")

	input := validInput()
	input.Email = "  Alice@X.com "

	p, err := svc.Create(context.Background(), u.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", p.Email)
}

func TestCreateProfileForUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), uuid.New(), validInput())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateSecondProfileForSameUser(t *testing.T) {
	svc, users := newTestService(t)
	u := users.add("a@x.com")

	_, err := svc.Create(context.Background(), u.ID, validInput())
	require.NoError(t, err)

	input := validInput()
	input.Mobile = "0999999999"
	input.Email = "other@x.com"

	_, err = svc.Create(context.Background(), u.ID, input)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreateProfileDuplicateMobile(t *testing.T) {
	svc, users := newTestService(t)
	first := users.add("a@x.com")
	second := users.add("b@x.com")

	_, err := svc.Create(context.Background(), first.ID, validInput())
	require.NoError(t, err)

	input := validInput()
	input.Email = "other@x.com"

	_, err = svc.Create(context.Background(), second.ID, input)
	assert.ErrorIs(t, err, ErrDuplicateMobile)
}

func TestCreateProfileValidation(t *testing.T) {
	svc, users := newTestService(t)
	u := users.add("a@x.com")

	tests := []struct {
		name    string
		mutate  func(*CreateInput)
		wantErr error
	}{
		{"missing name", func(in *CreateInput) { in.Name = "" }, ErrNameRequired},
		{"name too long", func(in *CreateInput) { in.Name = "0123456789012345678901234567890" }, ErrNameTooLong},
		{"missing mobile", func(in *CreateInput) { in.Mobile = "" }, ErrMobileRequired},
		{"mobile too long", func(in *CreateInput) { in.Mobile = "01234567890" }, ErrMobileTooLong},
		{"missing email", func(in *CreateInput) { in.Email = "" }, ErrEmailRequired},
		{"invalid email", func(in *CreateInput) { in.Email = "not-an-email" }, ErrInvalidEmail},
		{"missing gender", func(in *CreateInput) { in.Gender = "" }, ErrGenderRequired},
		{"invalid gender", func(in *CreateInput) { in.Gender = "OTHER" }, ErrInvalidGender},
		{"invalid date", func(in *CreateInput) { in.DateOfBirth = "15/04/1990" }, ErrInvalidDate},
		{"impossible date", func(in *CreateInput) { in.DateOfBirth = "1990-02-30" }, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			_, err := svc.Create(context.Background(), u.ID, input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestViewProfile(t *testing.T) {
	svc, users := newTestService(t)
	u := users.add("a@x.com")

	_, err := svc.View(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := svc.Create(context.Background(), u.ID, validInput())
	require.NoError(t, err)

	p, err := svc.View(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, p.ID)
	assert.Equal(t, "Alice", p.Name)
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, users := newTestService(t)
	u := users.add("a@x.com")

	_, err := svc.Create(context.Background(), u.ID, validInput())
	require.NoError(t, err)

	// Only the name is supplied; every other field keeps its value
	updated, err := svc.Update(context.Background(), u.ID, UpdateInput{Name: strPtr("Bob")})
	require.NoError(t, err)

	assert.Equal(t, "Bob", updated.Name)
	assert.Equal(t, "0123456789", updated.Mobile)
	assert.Equal(t, "alice@x.com", updated.Email)
	assert.Equal(t, GenderFemale, updated.Gender)
	assert.Equal(t, "1990-04-15", updated.DateOfBirth.Format(DateLayout))
}

func TestUpdateProfileAllFields(t *testing.T) {
	svc, users := newTestService(t)
	u := users.add("a@x.com")

	_, err := svc.Create(context.Background(), u.ID, validInput())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), u.ID, UpdateInput{
		Name:        strPtr("Bob"),
		Mobile:      strPtr("0987654321"),
		Email:       strPtr("Bob@X.com"),
		Gender:      strPtr(GenderMale),
		DateOfBirth: strPtr("1985-12-31"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Bob", updated.Name)
	assert.Equal(t, "0987654321", updated.Mobile)
	assert.Equal(t, "bob@x.com", updated.Email)
	assert.Equal(t, GenderMale, updated.Gender)
	assert.Equal(t, "1985-12-31", updated.DateOfBirth.Format(DateLayout))
}

func TestUpdateProfileExplicitEmptyValueIsRejected(t *testing.T) {
	svc, users := newTestService(t)
	u := users.add("a@x.com")

	_, err := svc.Create(context.Background(), u.ID, validInput())
	require.NoError(t, err)

	// An explicitly supplied empty string is not "absent"
	_, err = svc.Update(context.Background(), u.ID, UpdateInput{Name: strPtr("")})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Update(context.Background(), u.ID, UpdateInput{DateOfBirth: strPtr("not-a-date")})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestUpdateProfileWithoutProfile(t *testing.T) {
	svc, users := newTestService(t)
	u := users.add("a@x.com")

	_, err := svc.Update(context.Background(), u.ID, UpdateInput{Name: strPtr("Bob")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProfile(t *testing.T) {
	svc, users := newTestService(t)
	u := users.add("a@x.com")

	_, err := svc.Create(context.Background(), u.ID, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), u.ID, "0123456789"))

	_, err = svc.View(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProfileMissingMobile(t *testing.T) {
	svc, users := newTestService(t)
	u := users.add("a@x.com")

	err := svc.Delete(context.Background(), u.ID, "")
	assert.ErrorIs(t, err, ErrMobileRequired)
}

func TestDeleteProfileUnknownMobile(t *testing.T) {
	svc, users := newTestService(t)
	u := users.add("a@x.com")

	err := svc.Delete(context.Background(), u.ID, "0000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOtherUsersProfile(t *testing.T) {
	svc, users := newTestService(t)
	owner := users.add("a@x.com")
	intruder := users.add("b@x.com")

	_, err := svc.Create(context.Background(), owner.ID, validInput())
	require.NoError(t, err)

	// A mobile owned by someone else looks like it does not exist
	err = svc.Delete(context.Background(), intruder.ID, "0123456789")
	assert.ErrorIs(t, err, ErrNotFound)

	// The owner's profile is untouched
	_, err = svc.View(context.Background(), owner.ID)
	assert.NoError(t, err)
}
