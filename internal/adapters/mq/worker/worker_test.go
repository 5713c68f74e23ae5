package worker

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/metalk/feelings/internal/adapters/assets"
	"github.com/metalk/feelings/internal/adapters/compose"
	"github.com/metalk/feelings/internal/adapters/mq/queue"
	"github.com/metalk/feelings/internal/adapters/repository"
)

// waitFor polls until cond returns true or the deadline passes.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestWorkerProcessing(t *testing.T) {
	Convey("Given a worker over a queue and an image store", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		Reset(cancel)

		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		store := repository.New()
		refs := assets.Memory{"feelings/happy.png": []byte("reference-happy")}
		composer := compose.NewSimulated(compose.WithLatencyRange(time.Millisecond, 2*time.Millisecond))

		w := NewWorker(q, composer, store, refs, WithName("worker-test"))
		go w.Run(ctx)
		Reset(func() { _ = w.Shutdown(context.Background()) })

		Convey("When a job for the active generation is enqueued", func() {
			store.BeginGeneration(ctx, "gen-1", 1)
			So(q.Enqueue(ctx, Job{
				GenerationID: "gen-1",
				TileKey:      "happy",
				Feeling:      "Happy",
				Asset:        "feelings/happy.png",
				Photo:        []byte("photo"),
			}), ShouldBeTrue)

			Convey("Then the composed image is installed", func() {
				So(waitFor(func() bool {
					_, ok := store.Image(ctx, "happy")
					return ok
				}), ShouldBeTrue)

				img, _ := store.Image(ctx, "happy")
				So(img, ShouldResemble, []byte("reference-happy"))
				So(store.Progress(ctx).Done, ShouldBeTrue)
			})
		})

		Convey("When the reference asset is missing", func() {
			store.BeginGeneration(ctx, "gen-1", 1)
			So(q.Enqueue(ctx, Job{
				GenerationID: "gen-1",
				TileKey:      "happy",
				Asset:        "feelings/missing.png",
			}), ShouldBeTrue)

			Convey("Then the tile is marked failed, not installed", func() {
				So(waitFor(func() bool { return store.Progress(ctx).Done }), ShouldBeTrue)

				p := store.Progress(ctx)
				So(p.Failed, ShouldEqual, 1)
				So(p.Completed, ShouldEqual, 0)
			})
		})

		Convey("When the composer fails for one tile", func() {
			failing := compose.NewSimulated(
				compose.WithLatencyRange(time.Millisecond, 2*time.Millisecond),
				compose.WithFailingTiles("happy"),
			)
			fq := queue.NewInMemoryQueue(queue.WithCapacity(8))
			fw := NewWorker(fq, failing, store, refs, WithName("worker-fail"))
			go fw.Run(ctx)
			Reset(func() { _ = fw.Shutdown(context.Background()) })

			store.BeginGeneration(ctx, "gen-1", 1)
			So(fq.Enqueue(ctx, Job{
				GenerationID: "gen-1",
				TileKey:      "happy",
				Asset:        "feelings/happy.png",
			}), ShouldBeTrue)

			Convey("Then the failure is recorded and the generation completes", func() {
				So(waitFor(func() bool { return store.Progress(ctx).Done }), ShouldBeTrue)
				So(store.Progress(ctx).AllFailed, ShouldBeTrue)
			})
		})

		Convey("When a job belongs to a superseded generation", func() {
			store.BeginGeneration(ctx, "gen-1", 1)
			store.BeginGeneration(ctx, "gen-2", 1)
			So(q.Enqueue(ctx, Job{
				GenerationID: "gen-1",
				TileKey:      "happy",
				Asset:        "feelings/happy.png",
			}), ShouldBeTrue)
			So(q.Enqueue(ctx, Job{
				GenerationID: "gen-2",
				TileKey:      "happy",
				Asset:        "feelings/happy.png",
			}), ShouldBeTrue)

			Convey("Then the stale job is drained without composing", func() {
				So(waitFor(func() bool { return store.Progress(ctx).Done }), ShouldBeTrue)

				p := store.Progress(ctx)
				So(p.GenerationID, ShouldEqual, "gen-2")
				So(p.Completed, ShouldEqual, 1)
				So(p.Failed, ShouldEqual, 0)
			})
		})
	})
}

func TestWorkerShutdown(t *testing.T) {
	Convey("Given a running worker", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue()
		store := repository.New()
		w := NewWorker(q, compose.NewSimulated(), store, assets.Memory{})
		go w.Run(ctx)

		Convey("When shutdown is requested", func() {
			err := w.Shutdown(ctx)

			Convey("Then the loop exits", func() {
				So(err, ShouldBeNil)
			})

			Convey("Then a second shutdown is safe", func() {
				So(w.Shutdown(ctx), ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		Reset(cancel)

		q := queue.NewInMemoryQueue()
		store := repository.New()
		refs := assets.Memory{
			"feelings/happy.png": []byte("ref-happy"),
			"feelings/sad.png":   []byte("ref-sad"),
			"feelings/calm.png":  []byte("ref-calm"),
		}
		composer := compose.NewSimulated(compose.WithLatencyRange(time.Millisecond, 2*time.Millisecond))

		pool := NewPool(3, q, composer, store, refs)
		pool.Start(ctx)
		Reset(pool.Stop)

		Convey("When a generation's jobs are spread across workers", func() {
			store.BeginGeneration(ctx, "gen-1", 3)
			for _, key := range []string{"happy", "sad", "calm"} {
				So(q.Enqueue(ctx, Job{
					GenerationID: "gen-1",
					TileKey:      key,
					Asset:        "feelings/" + key + ".png",
				}), ShouldBeTrue)
			}

			Convey("Then every tile completes", func() {
				So(waitFor(func() bool { return store.Progress(ctx).Done }), ShouldBeTrue)
				So(store.Progress(ctx).Completed, ShouldEqual, 3)
			})
		})

		Convey("When the pool stops twice", func() {
			pool.Stop()

			Convey("Then the second stop is a no-op", func() {
				So(pool.Stop, ShouldNotPanic)
			})
		})
	})
}

// Ensure the installer contract stays satisfied by the repository store.
var _ Installer = (*repository.ImageStore)(nil)

// Exercise concurrent install bookkeeping through the pool path.
func TestPoolConcurrentInstalls(t *testing.T) {
	Convey("Given many jobs racing through a small pool", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		Reset(cancel)

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		store := repository.New()
		refs := assets.Memory{}
		keys := make([]string, 0, 24)
		for i := 0; i < 24; i++ {
			key := "tile-" + string(rune('a'+i))
			keys = append(keys, key)
			refs["feelings/"+key+".png"] = []byte("ref-" + key)
		}

		composer := compose.NewSimulated(compose.WithLatencyRange(time.Millisecond, 3*time.Millisecond))
		pool := NewPool(4, q, composer, store, refs)
		pool.Start(ctx)
		Reset(pool.Stop)

		store.BeginGeneration(ctx, "gen-1", len(keys))
		for _, key := range keys {
			So(q.Enqueue(ctx, Job{
				GenerationID: "gen-1",
				TileKey:      key,
				Asset:        "feelings/" + key + ".png",
			}), ShouldBeTrue)
		}

		Convey("Then the progress count converges on the total", func() {
			So(waitFor(func() bool { return store.Progress(ctx).Done }), ShouldBeTrue)

			p := store.Progress(ctx)
			So(p.Completed, ShouldEqual, len(keys))
			So(p.Failed, ShouldEqual, 0)
		})
	})
}
