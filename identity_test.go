package chat

import (
	"errors"
	"testing"

	"github.com/RezaAbdollahi2002/homebase-chat-go/internal/types"
)

func TestResolveIdentity(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		creds   Credentials
		want    types.Participant
		wantErr bool
	}{
		{"employee", Credentials{EmployeeID: 42}, types.Participant{ID: 42, Role: types.RoleEmployee}, false},
		{"employer", Credentials{EmployerID: 9}, types.Participant{ID: 9, Role: types.RoleEmployer}, false},
		{"neither", Credentials{}, types.Participant{}, true},
		{"both", Credentials{EmployeeID: 42, EmployerID: 9}, types.Participant{}, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ResolveIdentity(tc.creds)
			if tc.wantErr {
				if !errors.Is(err, ErrNoIdentity) {
					t.Fatalf("expected ErrNoIdentity, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
