package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_users.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			options := buildOptions(tc)
			decoder := NewDecoder[user](options...)

			ctx := Context{
				SessionID: tc.SessionID,
				Source:    tc.Source,
			}

			result, err := decoder.Decode(ctx, tc.Input)

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}

			if !reflect.DeepEqual(tc.Expect, result) {
				t.Fatalf("decoded user mismatch:\nwant: %#v\n got: %#v", tc.Expect, result)
			}
		})
	}
}

func TestDecoderDoesNotMutatePayload(t *testing.T) {
	payload := map[string]any{"name": "Jon Snow", "tags": []any{"stark"}}
	decoder := NewDecoder[user](WithPreHook[user](splitNamePreHook))

	if _, err := decoder.Decode(Context{}, payload); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if payload["name"] != "Jon Snow" {
		t.Fatalf("payload mutated: %#v", payload)
	}
}

func buildOptions(tc fixtureCase) []DecoderOption[user] {
	options := []DecoderOption[user]{}

	for _, optName := range tc.Options {
		switch optName {
		case "use_number":
			options = append(options, WithUseNumber[user]())
		case "disallow_unknown":
			options = append(options, WithDisallowUnknownFields[user]())
		}
	}

	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "split_name":
			options = append(options, WithPreHook[user](splitNamePreHook))
		}
	}

	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "ensure_tag":
			options = append(options, WithPostHook[user](ensureTagPostHook))
		}
	}

	return options
}

func splitNamePreHook(_ Context, payload any) (any, error) {
	object, ok := payload.(map[string]any)
	if !ok {
		return payload, nil
	}
	value, ok := object["name"].(string)
	if !ok || value == "" {
		return payload, nil
	}

	parts := strings.Fields(value)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid name %q", value)
	}
	delete(object, "name")
	object["firstName"] = parts[0]
	object["lastName"] = parts[1]
	return object, nil
}

func ensureTagPostHook(ctx Context, out *user) error {
	if out == nil {
		return errors.New("user is nil")
	}
	if len(out.Tags) > 0 {
		return nil
	}
	out.Tags = []string{"session:" + ctx.SessionID}
	return nil
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name      string   `json:"name"`
	SessionID string   `json:"sessionId"`
	Source    string   `json:"source"`
	Input     any      `json:"input"`
	Expect    user     `json:"expect"`
	ExpectErr string   `json:"expectErr"`
	PreHooks  []string `json:"preHooks"`
	PostHooks []string `json:"postHooks"`
	Options   []string `json:"options"`
}

type user struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Age       int      `json:"age"`
	Address   address  `json:"address"`
	Tags      []string `json:"tags"`
}

type address struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}
