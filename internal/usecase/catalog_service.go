package usecase

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"sniff/internal/domain"
	"sniff/internal/port"
)

var (
	slugSpaceRe   = regexp.MustCompile(`\s+`)
	slugInvalidRe = regexp.MustCompile(`[^a-z0-9\-_]`)
)

// Slugify turns a display name into a catalog id: lowercased, whitespace
// runs become dashes, everything else outside [a-z0-9-_] is dropped.
func Slugify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = slugSpaceRe.ReplaceAllString(text, "-")
	text = slugInvalidRe.ReplaceAllString(text, "")
	if text == "" {
		return "smell"
	}
	return text
}

// CatalogService is the high-level API over the persisted catalog: smell
// management, the draft/default prompt lifecycle, provider lookup, and
// detection-target construction. Every mutating operation loads, changes,
// and saves the catalog, so the store stays the source of truth between
// calls.
type CatalogService struct {
	store  port.CatalogStore
	walker port.FileWalker
	reader port.FileReader
}

func NewCatalogService(store port.CatalogStore, walker port.FileWalker, reader port.FileReader) *CatalogService {
	return &CatalogService{store: store, walker: walker, reader: reader}
}

// Load returns the stored catalog, creating the default one on first use.
func (s *CatalogService) Load() (domain.Catalog, error) {
	return s.store.EnsureExists(nil)
}

func (s *CatalogService) Save(c domain.Catalog) error {
	return s.store.Save(c)
}

// AddSmell creates a user-defined smell from name and description.
// Prompts start empty and the smell is not ready for detection until a
// default prompt is promoted. Returns the new smell id.
func (s *CatalogService) AddSmell(name, description string) (string, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return "", domain.Validationf("smell name must not be empty")
	}
	if description == "" {
		return "", domain.Validationf("smell description must not be empty")
	}

	catalog, err := s.Load()
	if err != nil {
		return "", err
	}

	for _, existing := range catalog.Smells {
		if strings.EqualFold(strings.TrimSpace(existing.DisplayName), name) {
			return "", domain.Validationf("a smell named %q already exists", name)
		}
	}

	smellID := nextAvailableSmellID(catalog, Slugify(name))
	catalog.UpsertSmell(domain.SmellDefinition{
		SmellID:       smellID,
		DisplayName:   name,
		Description:   description,
		CreatedByUser: true,
		Enabled:       false,
	})

	if err := s.Save(catalog); err != nil {
		return "", err
	}
	return smellID, nil
}

func (s *CatalogService) RemoveSmell(smellID string) error {
	catalog, err := s.Load()
	if err != nil {
		return err
	}

	found := false
	kept := make([]domain.SmellDefinition, 0, len(catalog.Smells))
	for _, smell := range catalog.Smells {
		if smell.SmellID == smellID {
			found = true
			continue
		}
		kept = append(kept, smell)
	}
	if !found {
		return &domain.NotFoundError{Kind: "smell", ID: smellID}
	}

	catalog.Smells = kept
	return s.Save(catalog)
}

func (s *CatalogService) UpdateSmellDescription(smellID, description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.Validationf("smell description must not be empty")
	}

	catalog, err := s.Load()
	if err != nil {
		return err
	}
	smell, err := catalog.GetSmell(smellID)
	if err != nil {
		return err
	}
	smell.Description = description
	catalog.UpsertSmell(smell)
	return s.Save(catalog)
}

func (s *CatalogService) ListSmells() ([]domain.SmellDefinition, error) {
	catalog, err := s.Load()
	if err != nil {
		return nil, err
	}
	return catalog.Smells, nil
}

// ListDetectableSmells returns only smells ready for batch detection.
func (s *CatalogService) ListDetectableSmells() ([]domain.SmellDefinition, error) {
	catalog, err := s.Load()
	if err != nil {
		return nil, err
	}
	var out []domain.SmellDefinition
	for _, smell := range catalog.Smells {
		if smell.ReadyForDetection() {
			out = append(out, smell)
		}
	}
	return out, nil
}

// SaveDraftPrompt stores the trimmed prompt text as the smell's draft.
func (s *CatalogService) SaveDraftPrompt(smellID, promptText string) error {
	promptText = strings.TrimSpace(promptText)
	if promptText == "" {
		return domain.Validationf("draft prompt must not be empty")
	}

	catalog, err := s.Load()
	if err != nil {
		return err
	}
	smell, err := catalog.GetSmell(smellID)
	if err != nil {
		return err
	}
	smell.DraftPrompt = promptText
	catalog.UpsertSmell(smell)
	return s.Save(catalog)
}

// PromoteDraftToDefault makes the smell's draft its default prompt and
// enables it for detection.
func (s *CatalogService) PromoteDraftToDefault(smellID string) error {
	catalog, err := s.Load()
	if err != nil {
		return err
	}
	smell, err := catalog.GetSmell(smellID)
	if err != nil {
		return err
	}
	if err := smell.PromoteDraft(); err != nil {
		return err
	}
	catalog.UpsertSmell(smell)
	return s.Save(catalog)
}

func (s *CatalogService) GetPrompt(smellID string, mode domain.PromptMode) (string, error) {
	catalog, err := s.Load()
	if err != nil {
		return "", err
	}
	smell, err := catalog.GetSmell(smellID)
	if err != nil {
		return "", err
	}
	return smell.Prompt(mode)
}

func (s *CatalogService) ListProviders() ([]domain.ProviderDefinition, error) {
	catalog, err := s.Load()
	if err != nil {
		return nil, err
	}
	return catalog.Providers, nil
}

func (s *CatalogService) GetProvider(providerID string) (domain.ProviderDefinition, error) {
	catalog, err := s.Load()
	if err != nil {
		return domain.ProviderDefinition{}, err
	}
	for _, provider := range catalog.Providers {
		if provider.ProviderID == providerID {
			return provider, nil
		}
	}
	return domain.ProviderDefinition{}, &domain.NotFoundError{Kind: "provider", ID: providerID}
}

// BuildTargets enumerates the .py files under inputPath (a directory or a
// single file) and reads each into a detection target. Filenames are the
// walker's paths.
func (s *CatalogService) BuildTargets(inputPath string) ([]domain.DetectionTarget, error) {
	filenames, err := s.walker.Walk(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", inputPath, err)
	}
	if len(filenames) == 0 {
		return nil, domain.Validationf("input path contains no Python files (.py)")
	}

	targets := make([]domain.DetectionTarget, 0, len(filenames))
	for _, filename := range filenames {
		code, err := s.reader.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filename, err)
		}
		targets = append(targets, domain.DetectionTarget{Filename: filename, Code: code})
	}
	return targets, nil
}

// ValidateEngineeringInputPath enforces that prompt trials run against one
// project folder: the path must be a directory holding at least one .py
// file, and unless .py files sit directly at top level, at most one
// immediate subdirectory may contain them.
func (s *CatalogService) ValidateEngineeringInputPath(inputPath string) error {
	inputPath = strings.TrimSpace(inputPath)
	if inputPath == "" {
		return domain.Validationf("input path must not be empty")
	}
	info, err := os.Stat(inputPath)
	if err != nil || !info.IsDir() {
		return domain.Validationf("input path must be a directory")
	}

	files, err := s.walker.Walk(inputPath)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", inputPath, err)
	}
	if len(files) == 0 {
		return domain.Validationf("input path must contain at least one .py file")
	}

	entries, err := os.ReadDir(inputPath)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", inputPath, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".py") {
			return nil
		}
	}

	projectLike := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		subdir := filepath.Join(inputPath, entry.Name())
		sub, err := s.walker.Walk(subdir)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", subdir, err)
		}
		if len(sub) > 0 {
			projectLike++
			if projectLike > 1 {
				return domain.Validationf("prompt engineering expects a single project folder; input path looks like it contains multiple projects")
			}
		}
	}
	return nil
}

func nextAvailableSmellID(catalog domain.Catalog, baseID string) string {
	existing := make(map[string]struct{}, len(catalog.Smells))
	for _, smell := range catalog.Smells {
		existing[smell.SmellID] = struct{}{}
	}
	if _, taken := existing[baseID]; !taken {
		return baseID
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", baseID, i)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}
