package onboarding

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/wellnesscoach/internal/telemetry/metrics"
	"github.com/2beens/wellnesscoach/internal/telemetry/tracing"
	"github.com/2beens/wellnesscoach/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type ValidateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type ValidateFieldResponse struct {
	Field string `json:"field"`
	Error string `json:"error,omitempty"`
}

type ValidateStepResponse struct {
	Valid  bool             `json:"valid"`
	Errors ValidationErrors `json:"errors"`
}

type RegisterResponse struct {
	UserID string `json:"userId"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type BMIRequest struct {
	Height string `json:"height"`
	Weight string `json:"weight"`
}

type OptionsResponse struct {
	Genders          []Option `json:"genders"`
	ExperienceLevels []Option `json:"experienceLevels"`
	WorkoutDays      []Option `json:"workoutDays"`
	WorkoutTypes     []string `json:"workoutTypes"`
	FitnessGoals     []string `json:"fitnessGoals"`
}

type Handler struct {
	registrar      Registrar
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewHandler(registrar Registrar, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		registrar:      registrar,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (handler *Handler) HandleOptions(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, OptionsResponse{
		Genders:          Genders,
		ExperienceLevels: ExperienceLevels,
		WorkoutDays:      WorkoutDays,
		WorkoutTypes:     WorkoutTypes,
		FitnessGoals:     FitnessGoals,
	}, http.StatusOK)
}

func (handler *Handler) HandleValidateField(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.onboarding.validateField")
	defer span.End()

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req ValidateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("validate field, unmarshal json params: %s", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Field == "" {
		http.Error(w, "error, field empty", http.StatusBadRequest)
		return
	}

	span.SetAttributes(attribute.String("field", req.Field))
	pkg.WriteJSON(w, ValidateFieldResponse{
		Field: req.Field,
		Error: ValidateField(req.Field, req.Value),
	}, http.StatusOK)
}

func (handler *Handler) HandleValidateStep(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.onboarding.validateStep")
	defer span.End()

	step, err := strconv.Atoi(mux.Vars(r)["step"])
	if err != nil || step < 1 || step > TotalSteps {
		http.Error(w, "error, step must be between 1 and 4", http.StatusBadRequest)
		return
	}

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var data Data
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		log.Tracef("validate step, unmarshal json params: %s", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	errs := StepErrors(step, data)
	span.SetAttributes(attribute.Int("step", step), attribute.Bool("valid", len(errs) == 0))
	pkg.WriteJSON(w, ValidateStepResponse{
		Valid:  len(errs) == 0,
		Errors: errs,
	}, http.StatusOK)
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.onboarding.register")
	defer span.End()

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var data Data
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		log.Tracef("register, unmarshal json params: %s", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if errs := AllStepErrors(data); len(errs) > 0 {
		handler.countRegistration("invalid")
		pkg.WriteJSON(w, ValidateStepResponse{
			Valid:  false,
			Errors: errs,
		}, http.StatusBadRequest)
		return
	}

	userID, err := Register(ctx, handler.registrar, data, handler.now())
	if err != nil {
		log.Errorf("failed to register user [%s]: %s", data.Email, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "register-failed")
		handler.countRegistration("failed")
		pkg.WriteJSON(w, ErrorResponse{Error: err.Error()}, http.StatusBadGateway)
		return
	}

	log.Debugf("new user registered: %s", userID)
	handler.countRegistration("ok")
	pkg.WriteJSON(w, RegisterResponse{UserID: userID}, http.StatusCreated)
}

func (handler *Handler) HandleBMI(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.onboarding.bmi")
	defer span.End()

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req BMIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("bmi, unmarshal json params: %s", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	res, err := BMIFromStrings(req.Height, req.Weight)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pkg.WriteJSON(w, res, http.StatusOK)
}

func (handler *Handler) countRegistration(outcome string) {
	if handler.metricsManager != nil {
		handler.metricsManager.CounterRegistrations.WithLabelValues(outcome).Inc()
	}
}
