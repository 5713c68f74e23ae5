package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			registryOpt := WithRegistry(prometheus.NewRegistry())

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(registryOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithRegistry(prometheus.NewRegistry()),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording domain events", func() {
			recorders := []func(){
				RecordUploadAccepted,
				func() { RecordUploadRejected("type") },
				func() { RecordValidateLatency(12.5) },
				RecordClassifierFailOpen,
				RecordSessionStarted,
				RecordCooldownRejection,
				RecordAvatarCreated,
				RecordComposeSuccess,
				RecordComposeFailure,
				func() { RecordComposeLatency(80) },
				RecordGenerationStarted,
				RecordGenerationSuperseded,
				func() { UpdateTilesPersonalized(12) },
				func() { UpdateQueueSize(3) },
				func() { UpdateQueueCapacity(256) },
				func() { UpdateQueueUtilization(0.01) },
				RecordQueueEnqueue,
				RecordQueueDequeue,
				RecordQueueEnqueueError,
				func() { UpdateWorkerActiveCount(4) },
				func() { RecordWorkerProcessingLatency(5) },
				RecordWorkerError,
				RecordUtteranceSpoken,
				RecordUtteranceFailure,
				func() { RecordVoiceGateWait(100) },
				func() { RecordTileTap("en") },
				RecordCollageRendered,
				func() { RecordHTTPRequest("board", "GET", "200") },
				func() { RecordHTTPRequestDuration("board", "GET", "200", 0.05) },
				func() { UpdateSystemMemoryUsage(1 << 20) },
				func() { UpdateSystemGoroutineCount(10) },
			}

			Convey("Then none of them should panic", func() {
				for _, record := range recorders {
					So(record, ShouldNotPanic)
				}
			})
		})

		Convey("When gathering the registry", func() {
			RecordUploadAccepted()
			families, err := GetRegistry().Gather()

			Convey("Then registered metrics are exposed", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
