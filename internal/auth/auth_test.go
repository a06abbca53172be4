package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pokercount/backend/internal/models"
	"github.com/pokercount/backend/internal/storage/memory"
)

func TestValidateCredential(t *testing.T) {
	a := NewPasswordAuthenticator(memory.NewStore())

	tests := []struct {
		name       string
		credential string
		wantErr    bool
	}{
		{name: "valid", credential: "Str0ng-pass!", wantErr: false},
		{name: "too short", credential: "Ab1!", wantErr: true},
		{name: "no uppercase", credential: "weak-pass1!", wantErr: true},
		{name: "no digit", credential: "Weak-pass!", wantErr: true},
		{name: "no special", credential: "WeakPass123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.ValidateCredential(tt.credential)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCredential(%q) error = %v, wantErr %v", tt.credential, err, tt.wantErr)
			}
		})
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	a := NewPasswordAuthenticator(memory.NewStore())
	ctx := context.Background()

	user, err := a.Register(ctx, "alice", "Str0ng-pass!")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if user.ID == "" || user.Username != "alice" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "Str0ng-pass!" {
		t.Error("password stored in plain text")
	}

	t.Run("duplicate username", func(t *testing.T) {
		if _, err := a.Register(ctx, "alice", "Str0ng-pass!"); !errors.Is(err, ErrUsernameExists) {
			t.Errorf("got error %v, want ErrUsernameExists", err)
		}
	})

	t.Run("invalid username", func(t *testing.T) {
		if _, err := a.Register(ctx, "a", "Str0ng-pass!"); !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("got error %v, want ErrInvalidUsername", err)
		}
	})

	t.Run("correct password", func(t *testing.T) {
		got, err := a.Authenticate(ctx, "alice", "Str0ng-pass!")
		if err != nil {
			t.Fatalf("Authenticate() error: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("authenticated wrong user: %s", got.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, "alice", "Wrong-pass1!"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("got error %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, "nobody", "Str0ng-pass!"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("got error %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "u1", Username: "alice"}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" {
		t.Errorf("claims = %+v, want u1/alice", claims)
	}
}

func TestJWTRejectsBadTokens(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "u1", Username: "alice"}

	t.Run("garbage", func(t *testing.T) {
		if _, err := manager.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("got error %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := manager.Generate(user)
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		other := NewJWTManager("different-secret", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("got error %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		short := NewJWTManager("test-secret", -time.Minute)
		token, err := short.Generate(user)
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("got error %v, want ErrInvalidToken", err)
		}
	})
}
