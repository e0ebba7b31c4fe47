//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/riverbed-labs/flood-source-etl/internal/adapter/kafka"
	"github.com/riverbed-labs/flood-source-etl/internal/config"
	"github.com/riverbed-labs/flood-source-etl/internal/domain"
	"github.com/riverbed-labs/flood-source-etl/internal/observability"
)

const testTopic = "test-water-source-records"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker in a container and returns its
// bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestWriterPublishesWaterSources round-trips a water-source set through a
// real broker and checks the consumer-visible record shape.
func TestWriterPublishesWaterSources(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaTopic:     testTopic,
		Calibration:    domain.DefaultCalibration(),
		ReferenceEpoch: domain.DefaultReferenceEpoch,
	}

	crs := domain.CRS{Code: "EPSG:2193", Unit: "metre"}
	set := domain.NewWaterSourceSet([]domain.SampledPoint{
		{
			Point:  domain.Point{X: 4, Y: -6, Z: 12.5, HasZ: true, CRS: crs},
			Depths: []float64{0.5, 0.75},
		},
	}, []string{"1", "2"}, crs)

	writer := kafkaadapter.NewWriter(cfg, observability.NewMetricsForTesting(), discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.Load(ctx, set))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{broker},
		Topic:   testTopic,
		GroupID: fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, cancelRead := context.WithTimeout(ctx, 30*time.Second)
	defer cancelRead()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from record topic")

	var src domain.WaterSource
	require.NoError(t, json.Unmarshal(msg.Value, &src))

	assert.Equal(t, src.ID, string(msg.Key))
	assert.Equal(t, domain.Vector{X: 400, Y: -600, Z: 12.5}, src.Location)
	require.Len(t, src.Series, 2)
	assert.Equal(t, domain.DefaultReferenceEpoch, src.Series[0].Timestamp.UTC())
	assert.Equal(t, 50.0, src.Series[0].Depth)
	assert.Equal(t, 50.0, src.Volume())

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "EPSG:2193", headers["crs"])
	assert.NotEmpty(t, headers["generated_at"])
}
