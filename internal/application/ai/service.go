// Package ai provides the application layer for model-backed operations:
// prompt construction, the completion call and reconciliation of the answer.
package ai

import (
	"context"
	stderrors "errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/changeset"
	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

const (
	conversionWarning = "Could not convert ingredients into grocery units; the original quantities are shown"
	defaultServings   = 4
	defaultImageCount = 2
	maxSkeletonTitle  = 80
)

// Recorder receives the outcome of each model-backed operation.
type Recorder interface {
	RecordOutcome(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordOutcome(string, string) {}

// Config tunes the completion calls.
type Config struct {
	MaxTokens             int
	RegenerationMaxTokens int
	Temperature           float64
	ImageCount            int
}

// Service implements inbound.AIService
type Service struct {
	recipes    outbound.RecipeRepository
	completion outbound.CompletionClient
	images     inbound.ImageService
	recorder   Recorder
	cfg        Config
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates the AI service. images and recorder may be nil.
func NewService(
	recipes outbound.RecipeRepository,
	completion outbound.CompletionClient,
	images inbound.ImageService,
	recorder Recorder,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if cfg.ImageCount <= 0 {
		cfg.ImageCount = defaultImageCount
	}
	return &Service{
		recipes:    recipes,
		completion: completion,
		images:     images,
		recorder:   recorder,
		cfg:        cfg,
		logger:     logger.Named("ai-service"),
		now:        time.Now,
	}
}

// Regenerate previews the recipe with the change set applied
func (s *Service) Regenerate(ctx context.Context, recipeID string, cs changeset.ChangeSet) (*inbound.AIRecipeResult, error) {
	s.logger.Info("Regenerating recipe",
		zap.String("recipe_id", recipeID),
		zap.Int("substitutions", len(cs.Substitutions)),
		zap.Int("deletions", len(cs.Deletions)),
		zap.Int("locked", len(cs.LockedIngredientIDs)),
	)

	original, err := s.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := cs.Validate(original); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	system, user := BuildRegenerationPrompt(original, &cs)
	res := s.regenerate(ctx, original, &cs, system, user)
	s.recorder.RecordOutcome("regenerate", res.Kind.String())

	switch res.Kind {
	case KindFatal:
		s.logger.Error("Regeneration failed", zap.String("recipe_id", recipeID), zap.Error(res.Err))
		return nil, res.Err
	case KindFallback:
		s.logger.Warn("Regeneration fell back to the original recipe",
			zap.String("recipe_id", recipeID),
			zap.Error(res.Err),
		)
		return &inbound.AIRecipeResult{Recipe: res.Value, Outcome: inbound.OutcomeFallback, Warnings: res.Warnings}, nil
	default:
		return &inbound.AIRecipeResult{Recipe: res.Value, Outcome: inbound.OutcomeOk, Warnings: res.Warnings}, nil
	}
}

func (s *Service) regenerate(ctx context.Context, original *recipe.Recipe, cs *changeset.ChangeSet, system, user string) Result[*recipe.Recipe] {
	resp, err := s.complete(ctx, system, user, s.cfg.RegenerationMaxTokens)
	if err != nil {
		return Fatal[*recipe.Recipe](err)
	}

	fallback := func(cause error) Result[*recipe.Recipe] {
		merged, warnings := MergeRegeneration(original, &RecipeDraft{}, cs)
		warnings = append([]string{"The model's answer could not be read; only deletions and locks were applied"}, warnings...)
		return Fallback(merged, cause, warnings...)
	}

	obj, err := DecodeObject(resp.Content)
	if err != nil {
		return fallback(err)
	}
	draft, err := ParseRecipeDraft(obj)
	if err != nil {
		return fallback(err)
	}

	merged, warnings := MergeRegeneration(original, draft, cs)
	return Ok(merged, warnings...)
}

// Generate drafts a new recipe from an idea
func (s *Service) Generate(ctx context.Context, req inbound.GenerateRecipeRequest) (*inbound.AIRecipeResult, error) {
	s.logger.Info("Generating recipe", zap.String("prompt", req.Prompt), zap.String("cuisine", req.Cuisine))

	res := s.generate(ctx, req)
	s.recorder.RecordOutcome("generate", res.Kind.String())

	switch res.Kind {
	case KindFatal:
		s.logger.Error("Generation failed", zap.Error(res.Err))
		return nil, res.Err
	case KindFallback:
		s.logger.Warn("Generation returned a skeleton recipe", zap.Error(res.Err))
		return &inbound.AIRecipeResult{Recipe: res.Value, Outcome: inbound.OutcomeFallback, Warnings: res.Warnings}, nil
	default:
		return &inbound.AIRecipeResult{Recipe: res.Value, Outcome: inbound.OutcomeOk, Warnings: res.Warnings}, nil
	}
}

func (s *Service) generate(ctx context.Context, req inbound.GenerateRecipeRequest) Result[*recipe.Recipe] {
	system, user := BuildGenerationPrompt(req)
	resp, err := s.complete(ctx, system, user, s.cfg.MaxTokens)
	if err != nil {
		return Fatal[*recipe.Recipe](err)
	}

	skeleton := skeletonRecipe(req)
	fallback := func(cause error) Result[*recipe.Recipe] {
		return Fallback(skeleton, cause, "The model's answer could not be read; a blank draft was created from your idea")
	}

	obj, err := DecodeObject(resp.Content)
	if err != nil {
		return fallback(err)
	}
	draft, err := ParseRecipeDraft(obj)
	if err != nil {
		return fallback(err)
	}
	if len(draft.Ingredients) == 0 || len(draft.Steps) == 0 {
		return fallback(&ShapeError{Path: "$", Want: "ingredients and steps", Got: "empty lists"})
	}

	r, warnings := MergeRegeneration(skeleton, draft, &changeset.ChangeSet{})
	if r.Servings == nil {
		r.Servings = recipe.IntPtr(defaultServings)
	}
	return Ok(r, warnings...)
}

// skeletonRecipe is the baseline a generated recipe is merged onto.
func skeletonRecipe(req inbound.GenerateRecipeRequest) *recipe.Recipe {
	idea := strings.TrimSpace(req.Prompt)
	r := &recipe.Recipe{
		Title:       skeletonTitle(idea),
		Description: idea,
		Ingredients: []recipe.Ingredient{},
		Steps:       []string{},
	}
	if req.Servings > 0 {
		r.Servings = recipe.IntPtr(req.Servings)
	}
	if req.Cuisine != "" {
		r.Tags = []string{strings.ToLower(req.Cuisine)}
	}
	return r
}

// skeletonTitle turns the idea into a title of at most maxSkeletonTitle
// runes that still fits recipe.MaxTitleLength bytes.
func skeletonTitle(idea string) string {
	first, size := utf8.DecodeRuneInString(idea)
	if size == 0 {
		return ""
	}

	var b strings.Builder
	runes := 0
	for _, r := range string(unicode.ToUpper(first)) + idea[size:] {
		if runes == maxSkeletonTitle || b.Len()+utf8.RuneLen(r) > recipe.MaxTitleLength {
			break
		}
		b.WriteRune(r)
		runes++
	}
	return strings.TrimSpace(b.String())
}

// AddWithAI generates, illustrates and stores a new recipe
func (s *Service) AddWithAI(ctx context.Context, req inbound.GenerateRecipeRequest) (*recipe.Recipe, error) {
	res, err := s.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.Outcome != inbound.OutcomeOk {
		return nil, errors.NewAppError(
			errors.CodeExternalServiceError,
			"The model did not return a usable recipe",
			strings.Join(res.Warnings, "; "),
		)
	}

	r := res.Recipe
	if s.images != nil {
		count := req.ImageCount
		if count <= 0 {
			count = s.cfg.ImageCount
		}
		images, err := s.images.ImagesForRecipe(ctx, r, count)
		if err != nil {
			s.logger.Warn("Could not attach images", zap.String("title", r.Title), zap.Error(err))
		}
		r.Images = images
	}

	r.EnsureIngredientIDs()
	r.Touch(s.now())
	if err := r.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.recipes.Create(ctx, r); err != nil {
		return nil, errors.NewDatabaseError("create recipe", err)
	}

	s.logger.Info("Stored generated recipe",
		zap.String("recipe_id", r.ID),
		zap.Int("images", len(r.Images)),
	)
	return r, nil
}

// EstimateMacros asks the model for per-serving nutrition and falls back to
// the keyword heuristic on any failure.
func (s *Service) EstimateMacros(ctx context.Context, req inbound.EstimateMacrosRequest) (*recipe.MacroInformation, error) {
	title := req.Title
	ingredients := req.Ingredients
	servings := req.Servings

	if req.RecipeID != "" {
		r, err := s.loadRecipe(ctx, req.RecipeID)
		if err != nil {
			return nil, err
		}
		title = r.Title
		ingredients = r.Ingredients
		if servings <= 0 {
			servings = r.ServingsOrDefault()
		}
	}
	if servings <= 0 {
		servings = 1
	}
	if len(ingredients) == 0 {
		return nil, errors.NewValidationError("ingredients are required")
	}

	res := s.estimateMacros(ctx, title, ingredients, servings)
	s.recorder.RecordOutcome("estimate_macros", res.Kind.String())
	if res.Kind == KindFallback {
		s.logger.Warn("Macro estimation used the heuristic", zap.Error(res.Err))
	}
	return res.Value, nil
}

func (s *Service) estimateMacros(ctx context.Context, title string, ingredients []recipe.Ingredient, servings int) Result[*recipe.MacroInformation] {
	fallback := func(cause error) Result[*recipe.MacroInformation] {
		return Fallback(EstimateMacrosHeuristic(ingredients, servings), cause)
	}

	system, user := BuildMacroPrompt(title, ingredients, servings)
	resp, err := s.complete(ctx, system, user, s.cfg.MaxTokens)
	if err != nil {
		return fallback(err)
	}
	obj, err := DecodeObject(resp.Content)
	if err != nil {
		return fallback(err)
	}
	macros, err := ParseMacros(obj)
	if err != nil {
		return fallback(err)
	}
	return Ok(macros)
}

// ConvertIngredients turns recipe quantities into purchasable units. On any
// failure the original ingredients are returned with a warning.
func (s *Service) ConvertIngredients(ctx context.Context, req inbound.ConvertIngredientsRequest) (*inbound.ConversionResult, error) {
	if len(req.Ingredients) == 0 {
		return nil, errors.NewValidationError("ingredients are required")
	}

	res := s.convert(ctx, req)
	s.recorder.RecordOutcome("convert_ingredients", res.Kind.String())

	out := &inbound.ConversionResult{Items: res.Value}
	if res.Kind == KindFallback {
		s.logger.Warn("Ingredient conversion fell back to the originals", zap.Error(res.Err))
		out.Warning = conversionWarning
	}
	return out, nil
}

func (s *Service) convert(ctx context.Context, req inbound.ConvertIngredientsRequest) Result[[]grocery.Item] {
	fallback := func(cause error) Result[[]grocery.Item] {
		return Fallback(FallbackGroceryItems(req.Ingredients, req.SourceRecipeID), cause, conversionWarning)
	}

	system, user := BuildConversionPrompt(req.Ingredients)
	resp, err := s.complete(ctx, system, user, s.cfg.MaxTokens)
	if err != nil {
		return fallback(err)
	}
	arr, err := DecodeArray(resp.Content)
	if err != nil {
		return fallback(err)
	}
	items, err := ParseGroceryItems(arr)
	if err != nil {
		return fallback(err)
	}
	if len(items) == 0 {
		return fallback(ErrEmptyAnswer)
	}
	for i := range items {
		items[i].SourceRecipeID = req.SourceRecipeID
	}
	return Ok(items)
}

// complete issues the single completion call and maps transport failures
// onto application errors.
func (s *Service) complete(ctx context.Context, system, user string, maxTokens int) (*outbound.CompletionResponse, error) {
	temperature := s.cfg.Temperature
	resp, err := s.completion.Complete(ctx, outbound.CompletionRequest{
		System:      system,
		User:        user,
		MaxTokens:   maxTokens,
		JSONMode:    true,
		Temperature: &temperature,
	})
	if err != nil {
		if appErr, ok := errors.As(err); ok {
			return nil, appErr
		}
		return nil, errors.NewExternalServiceError("completion API", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return nil, errors.NewExternalServiceError("completion API", ErrEmptyAnswer)
	}
	return resp, nil
}

func (s *Service) loadRecipe(ctx context.Context, id string) (*recipe.Recipe, error) {
	r, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, errors.NewRecipeNotFoundError(id)
		}
		return nil, errors.NewDatabaseError("load recipe", err)
	}
	r.EnsureIngredientIDs()
	return r, nil
}
