package sendinquiry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"supplier-portal/internal/common/config"
	"supplier-portal/internal/common/errors"
	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/metrics"
	"supplier-portal/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType   = "supplier.inquiry.send"
	WorkerName = "send-inquiry"
)

type executor interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
}

type Handler struct {
	config   *Config
	logger   logger.Logger
	service  executor
	failures *errors.ErrorHandler
	obs      *observability.Observability
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Logger        logger.Logger
	NewClient     ClientFactory
	Service       executor
	Observability *observability.Observability // optional
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", WorkerName, err)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}

	handler := &Handler{
		config:   workerConfig,
		logger:   loggerInstance,
		service:  opts.Service,
		failures: errors.NewErrorHandler(loggerInstance),
		obs:      opts.Observability,
	}
	if handler.service == nil {
		if opts.NewClient == nil {
			return nil, fmt.Errorf("%s requires a directory client factory", WorkerName)
		}
		handler.service = NewService(ServiceDependencies{
			Logger:    loggerInstance,
			NewClient: opts.NewClient,
		}, workerConfig)
	}
	return handler, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing supplier inquiry", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"worker":             TaskType,
	})

	if !h.config.Enabled {
		h.completeJob(ctx, client, job, &Output{Message: "Inquiry sending disabled"})
		return
	}

	input, err := h.parseInput(job)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
		h.failures.HandleJobError(ctx, client, job, err)
		h.recordJob(ctx, startTime, "failed")
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
		h.failures.HandleJobError(ctx, client, job, err)
		h.recordJob(ctx, startTime, "failed")
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.recordJob(ctx, startTime, "completed")
}

func (h *Handler) recordJob(ctx context.Context, start time.Time, status string) {
	h.obs.RecordJobProcessed(ctx, status)
	h.obs.RecordJobDuration(ctx, time.Since(start), status)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, &errors.StandardError{
			Code:      "INPUT_PARSING_FAILED",
			Message:   "Failed to parse job variables",
			Details:   err.Error(),
			Timestamp: time.Now(),
		}
	}

	result, err := GetInputSchema().ValidateInput(variables)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return nil, &errors.StandardError{
			Code:      errors.ErrCodeValidationFailed,
			Message:   "Input validation failed",
			Details:   fmt.Sprintf("Validation errors: %v", result.GetErrorMessages()),
			Timestamp: time.Now(),
		}
	}

	input := &Input{
		SupplierToken: variables["supplierToken"].(string),
		SupplierID:    stringID(variables["supplierId"]),
		Name:          variables["name"].(string),
		Email:         variables["email"].(string),
		Subject:       variables["subject"].(string),
		Message:       variables["message"].(string),
	}
	if tokenType, ok := variables["tokenType"].(string); ok {
		input.TokenType = tokenType
	}
	if phone, ok := variables["phone"].(string); ok {
		input.Phone = phone
	}
	return input, nil
}

// stringID accepts numeric ids from process variables.
func stringID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	variables := map[string]interface{}{
		"inquirySent":    output.InquirySent,
		"inquiryMessage": output.Message,
	}
	if output.InquiryID != "" {
		variables["inquiryId"] = output.InquiryID
	}
	if output.Status != "" {
		variables["inquiryStatus"] = output.Status
	}

	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(variables)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": TaskType,
		})
		return
	}
	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": TaskType,
		})
	}
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig != nil {
		if workerCfg, exists := appConfig.Workers[WorkerName]; exists {
			cfg.Enabled = workerCfg.Enabled
			if workerCfg.MaxJobsActive > 0 {
				cfg.MaxJobsActive = workerCfg.MaxJobsActive
			}
			if workerCfg.Timeout > 0 {
				cfg.Timeout = time.Duration(workerCfg.Timeout) * time.Millisecond
			}
		}
	}
	return cfg
}
