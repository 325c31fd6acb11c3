package user

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeyshop/internal/user/lockout"
	"honeyshop/pkg/domainerrors"
	"honeyshop/pkg/requestcontext"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(
		NewMemoryStore(),
		NewTokenIssuer("test-signing-key", time.Hour),
		lockout.NewMemoryTracker(),
		3,
		time.Minute,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Username:  "john_doe",
		Email:     "john@example.com",
		Password:  "password123",
		FirstName: "John",
		LastName:  "Doe",
	}
}

func TestRegister(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.NotZero(t, res.User.ID)
	assert.Equal(t, "john@example.com", res.User.Email)
	assert.Equal(t, RoleUser, res.User.Role)
	assert.NotEmpty(t, res.Token)
	assert.NotEqual(t, "password123", res.User.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name    string
		mutate  func(*RegisterInput)
		message string
	}{
		{"missing username", func(in *RegisterInput) { in.Username = "" }, "Please fill in all fields"},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, "Please fill in all fields"},
		{"missing password", func(in *RegisterInput) { in.Password = "" }, "Please fill in all fields"},
		{"missing first name", func(in *RegisterInput) { in.FirstName = "" }, "Please fill in all fields"},
		{"short password", func(in *RegisterInput) { in.Password = "abc" }, "Password must be at least 6 characters"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegistration()
			tc.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			var derr *domainerrors.Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, domainerrors.CodeInvalidInput, derr.Code)
			assert.Equal(t, tc.message, derr.Message)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	t.Run("same email", func(t *testing.T) {
		in := validRegistration()
		in.Username = "other_name"
		_, err := svc.Register(ctx, in)
		var derr *domainerrors.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, domainerrors.CodeConflict, derr.Code)
		assert.Equal(t, "User already exists", derr.Message)
	})

	t.Run("same username", func(t *testing.T) {
		in := validRegistration()
		in.Email = "other@example.com"
		_, err := svc.Register(ctx, in)
		var derr *domainerrors.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, domainerrors.CodeConflict, derr.Code)
	})
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	res, err := svc.Login(ctx, "john@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)
}

func TestLoginEmailCaseInsensitive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "John@Example.COM", "password123")
	assert.NoError(t, err)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "john@example.com", "wrong-password")
		var derr *domainerrors.Error
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, domainerrors.CodeUnauthorized, derr.Code)
		assert.Equal(t, "Invalid email or password", derr.Message)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "password123")
		var derr *domainerrors.Error
		require.ErrorAs(t, err, &derr)
		// Unknown accounts get the same opaque message as bad passwords.
		assert.Equal(t, "Invalid email or password", derr.Message)
	})
}

func TestLoginLockout(t *testing.T) {
	svc := newTestService(t)
	ctx := requestcontext.WithClientMetadata(context.Background(), "203.0.113.7", "curl/8.0")

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, "john@example.com", "wrong-password")
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrLockedOut)
	}

	// Threshold reached: even the correct password is refused.
	_, err = svc.Login(ctx, "john@example.com", "password123")
	assert.ErrorIs(t, err, ErrLockedOut)

	// A different source IP is not locked out.
	otherIP := requestcontext.WithClientMetadata(context.Background(), "198.51.100.9", "curl/8.0")
	_, err = svc.Login(otherIP, "john@example.com", "password123")
	assert.NoError(t, err)
}

func TestLockoutResetOnSuccess(t *testing.T) {
	svc := newTestService(t)
	ctx := requestcontext.WithClientMetadata(context.Background(), "203.0.113.7", "curl/8.0")

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _ = svc.Login(ctx, "john@example.com", "wrong-password")
	}
	_, err = svc.Login(ctx, "john@example.com", "password123")
	require.NoError(t, err)

	// The counter was reset; two more failures stay under the threshold.
	for i := 0; i < 2; i++ {
		_, err := svc.Login(ctx, "john@example.com", "wrong-password")
		require.NotErrorIs(t, err, ErrLockedOut)
	}
}

func TestProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	u, err := svc.Profile(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "john_doe", u.Username)

	_, err = svc.Profile(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	res, err := svc.UpdateProfile(ctx, reg.User.ID, UpdateInput{
		FirstName: "Johnny",
		Address:   Address{City: "Anytown"},
		Phone:     "555-5678",
	})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", res.User.FirstName)
	assert.Equal(t, "Doe", res.User.LastName)
	assert.Equal(t, "Anytown", res.User.Address.City)
	assert.Equal(t, "555-5678", res.User.Phone)
	assert.NotEmpty(t, res.Token)
}

func TestUpdateProfilePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, reg.User.ID, UpdateInput{Password: "short"})
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeInvalidInput, derr.Code)

	_, err = svc.UpdateProfile(ctx, reg.User.ID, UpdateInput{Password: "new-password"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "john@example.com", "new-password")
	assert.NoError(t, err)
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, u.ID)

	_, err = svc.Authenticate(ctx, "not-a-token")
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeUnauthorized, derr.Code)
}
