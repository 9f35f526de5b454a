package grpc

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/quentinrf/plant-monitor/services/apds-service/internal/domain"
	"github.com/quentinrf/plant-monitor/services/apds-service/pkg/pb"
)

// SessionController is the part of a sensor session the API drives
type SessionController interface {
	Status() domain.SessionStatus
	Mode() domain.Mode
	Poll() *domain.Reading
	Stop()
}

// SensorServiceHandler implements the gRPC SensorService
type SensorServiceHandler struct {
	pb.UnimplementedSensorServiceServer
	repo    domain.ReadingRepository
	session SessionController
}

// NewSensorServiceHandler creates a new gRPC handler
func NewSensorServiceHandler(repo domain.ReadingRepository, session SessionController) *SensorServiceHandler {
	return &SensorServiceHandler{
		repo:    repo,
		session: session,
	}
}

// GetStatus reports what the session is doing
func (h *SensorServiceHandler) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	log.Info().Msg("GetStatus called")

	return statusToProto(h.session.Status())
}

// GetLatestReading returns the most recent stored reading of a mode
func (h *SensorServiceHandler) GetLatestReading(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	log.Info().Str("mode", req.GetValue()).Msg("GetLatestReading called")

	mode, err := parseModeFilter(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	reading, err := h.repo.GetLatestReading(ctx, mode)
	if errors.Is(err, domain.ErrReadingNotFound) {
		// Nothing stored yet - sample now if that mode is running
		reading = h.sampleNow(mode)
		if reading == nil {
			return nil, status.Errorf(codes.NotFound, "no %s reading available", modeLabel(mode))
		}
	} else if err != nil {
		log.Error().Err(err).Msg("failed to get latest reading")
		return nil, status.Error(codes.Internal, "failed to get reading")
	}

	return readingToProto(reading)
}

func (h *SensorServiceHandler) sampleNow(mode domain.Mode) *domain.Reading {
	current := h.session.Mode()
	if !current.IsSensing() || (mode != domain.ModeIdle && mode != current) {
		return nil
	}

	log.Info().Str("mode", current.String()).Msg("no readings stored, polling sensor")

	reading := h.session.Poll()
	if reading == nil || reading.IsError() {
		return nil
	}
	return reading
}

// GetHistory returns readings within [start, end) with statistics.
// count is the number of readings returned; sampled is how many of them carry
// a numeric value (gestures do not) and so feed average, min and max.
func (h *SensorServiceHandler) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, start, end, err := pb.ParseHistoryRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	log.Info().
		Str("mode", name).
		Time("start", start).
		Time("end", end).
		Msg("GetHistory called")

	mode, err := parseModeFilter(name)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if !end.After(start) {
		return nil, status.Error(codes.InvalidArgument, "end must be after start")
	}

	readings, err := h.repo.GetReadingsInRange(ctx, mode, start, end)
	if err != nil {
		log.Error().Err(err).Msg("failed to get readings")
		return nil, status.Error(codes.Internal, "failed to get readings")
	}

	items := make([]interface{}, len(readings))
	for i, r := range readings {
		items[i] = readingFields(r)
	}

	stats := calculateStatistics(readings)

	return newStruct(map[string]interface{}{
		pb.FieldReadings: items,
		pb.FieldCount:    len(readings),
		pb.FieldSampled:  stats.sampled,
		pb.FieldAverage:  stats.average,
		pb.FieldMin:      stats.min,
		pb.FieldMax:      stats.max,
	})
}

// StopSession stops the session and returns its final status
func (h *SensorServiceHandler) StopSession(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	log.Info().Msg("StopSession called")

	h.session.Stop()
	return statusToProto(h.session.Status())
}

// parseModeFilter accepts a sensing mode name or "" for every mode
func parseModeFilter(name string) (domain.Mode, error) {
	if name == "" {
		return domain.ModeIdle, nil
	}

	mode, err := domain.ParseMode(name)
	if err != nil {
		return domain.ModeIdle, err
	}
	if !mode.IsSensing() {
		return domain.ModeIdle, domain.ErrUnknownMode
	}
	return mode, nil
}

func modeLabel(mode domain.Mode) string {
	if mode == domain.ModeIdle {
		return "sensor"
	}
	return mode.String()
}

func statusToProto(s domain.SessionStatus) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		pb.FieldSessionID: s.ID,
		pb.FieldMode:      s.Mode.String(),
		pb.FieldPolling:   s.Polling,
		pb.FieldStep:      s.Step,
	}
	if !s.StartedAt.IsZero() {
		fields[pb.FieldStarted] = s.StartedAt.UTC().Format(pb.TimeFormat)
	}
	if !s.StoppedAt.IsZero() {
		fields[pb.FieldStopped] = s.StoppedAt.UTC().Format(pb.TimeFormat)
	}
	return newStruct(fields)
}

func readingToProto(r *domain.Reading) (*structpb.Struct, error) {
	return newStruct(readingFields(r))
}

// readingFields converts domain model to struct fields; only the values of
// the reading's mode are included
func readingFields(r *domain.Reading) map[string]interface{} {
	fields := map[string]interface{}{
		pb.FieldSessionID: r.SessionID,
		pb.FieldMode:      r.Mode.String(),
		pb.FieldTimestamp: r.Timestamp.UTC().Format(pb.TimeFormat),
	}

	// a reading sampled on request has not been stored yet
	if r.ID != 0 {
		fields[pb.FieldID] = r.ID
	}

	switch r.Mode {
	case domain.ModeLight:
		fields[pb.FieldAmbient] = r.Values.Ambient
		fields[pb.FieldRed] = r.Values.Red
		fields[pb.FieldGreen] = r.Values.Green
		fields[pb.FieldBlue] = r.Values.Blue
	case domain.ModeProximity:
		fields[pb.FieldProximity] = r.Values.Proximity
	case domain.ModeGesture:
		fields[pb.FieldGesture] = string(r.Values.Gesture)
	}

	if r.Err != nil {
		fields[pb.FieldError] = r.Err.Error()
	}
	return fields
}

func newStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode response")
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return s, nil
}

// statistics holds calculated statistics
type statistics struct {
	sampled int
	average float64
	min     float64
	max     float64
}

// calculateStatistics computes stats over the primary value of each reading;
// gestures carry none and are left out
func calculateStatistics(readings []*domain.Reading) statistics {
	var (
		stats statistics
		sum   float64
	)

	for _, r := range readings {
		v, ok := r.Primary()
		if !ok || r.IsError() {
			continue
		}

		if stats.sampled == 0 || v < stats.min {
			stats.min = v
		}
		if stats.sampled == 0 || v > stats.max {
			stats.max = v
		}
		sum += v
		stats.sampled++
	}

	if stats.sampled > 0 {
		stats.average = sum / float64(stats.sampled)
	}
	return stats
}
