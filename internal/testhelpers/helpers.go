package testhelpers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/halsokollen/ingredicheck/backend/internal/models"
	"github.com/halsokollen/ingredicheck/backend/internal/reference"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

// CreateTestUser creates a user with a bcrypt-hashed password.
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// MockTokenValidator is a canned token validator for handler tests.
type MockTokenValidator struct {
	Claims *types.TokenClaims
	Error  error
}

func (m *MockTokenValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Claims, nil
}

// ClaimsFor builds token claims for an existing user.
func ClaimsFor(user *models.User) *types.TokenClaims {
	return &types.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
	}
}

// JSONMarshal is a helper function to marshal JSON for testing
func JSONMarshal(t *testing.T, v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal JSON: %v", err)
	}
	return data
}

// UUIDPtr returns a pointer to the given uuid, for optional owner columns.
func UUIDPtr(id uuid.UUID) *uuid.UUID { return &id }

// WriteTestDatasets writes a small but representative pair of reference
// datasets plus the known-safe list into a temp dir and returns their paths.
func WriteTestDatasets(t *testing.T) (guidePath, novelPath, knownSafePath string) {
	dir := t.TempDir()

	guide := []map[string]interface{}{
		{
			"name":        "N-Acetylcysteine",
			"synonyms":    []string{"NAC", "Acetylcysteine"},
			"is_medicine": false,
			"comment":     "Permitted in food supplements.",
		},
		{
			"name":        "Melatonin",
			"synonyms":    []string{"N-acetyl-5-methoxytryptamine"},
			"is_medicine": true,
			"comment":     "Classified as a medicinal substance above 0.5 mg.",
		},
		{
			"name":        "Ashwagandha",
			"synonyms":    "Withania somnifera",
			"is_medicine": false,
			"comment":     "",
		},
		{
			"name":        "Taurine",
			"synonyms":    []string{"2-aminoethanesulfonic acid"},
			"is_medicine": false,
			"comment":     "",
		},
		{
			"name":        "Creatine",
			"synonyms":    []string{"Creatine monohydrate"},
			"is_medicine": false,
			"comment":     "",
		},
	}
	novel := []map[string]interface{}{
		{
			"code":              "NF-001",
			"name":              "Cannabidiol",
			"common_name":       "CBD",
			"synonyms":          []string{},
			"novel_food_status": "Novel food",
		},
		{
			"code":              "NF-002",
			"name":              "Chia seed oil",
			"common_name":       "",
			"synonyms":          []string{"Salvia hispanica oil"},
			"novel_food_status": "Authorised novel food",
		},
		{
			"code":              "NF-003",
			"name":              "Lion's mane",
			"common_name":       "Hericium erinaceus",
			"synonyms":          []string{},
			"novel_food_status": "Subject to a consultation request",
		},
		{
			"code":              "NF-007",
			"name":              "Cordyceps militaris",
			"common_name":       "",
			"synonyms":          []string{},
			"novel_food_status": "Novel food",
		},
	}
	knownSafe := map[string]interface{}{
		"version": 1,
		"names":   []string{"Kalcium", "Calcium", "Magnesium", "Zink", "Zinc", "Vitamin C"},
	}

	guidePath = writeJSON(t, dir, "substance_guide.json", guide)
	novelPath = writeJSON(t, dir, "novel_food_catalogue.json", novel)
	knownSafePath = writeJSON(t, dir, "known_safe.json", knownSafe)
	return guidePath, novelPath, knownSafePath
}

// LoadTestLibrary loads the fixture datasets into a reference library.
func LoadTestLibrary(t *testing.T) *reference.Library {
	guide, novel, known := WriteTestDatasets(t)
	lib, err := reference.Load(guide, novel, known)
	if err != nil {
		t.Fatalf("failed to load test datasets: %v", err)
	}
	return lib
}

func writeJSON(t *testing.T, dir, name string, v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
