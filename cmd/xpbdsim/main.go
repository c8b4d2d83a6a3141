// Command xpbdsim runs a scene file and logs the final body poses.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/akmonengine/xpbd"
	"github.com/akmonengine/xpbd/actor"
	"github.com/akmonengine/xpbd/scene"
)

func main() {
	scenePath := flag.String("scene", "cmd/xpbdsim/scene.yaml", "scene description file")
	ticks := flag.Int("ticks", 250, "number of ticks to simulate")
	watch := flag.Bool("watch", false, "run in real time and restart the scene when its file changes")
	flag.Parse()

	if !*watch {
		s, err := build(*scenePath)
		if err != nil {
			log.Fatalf("load scene: %v", err)
		}
		start := time.Now()
		for range *ticks {
			s.World.Simulate()
		}
		log.Printf("simulated %d ticks in %v", s.World.Ticks(), time.Since(start))
		logPoses(s)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := watchScene(ctx, *scenePath); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func build(path string) (*scene.Scene, error) {
	spec, err := scene.Load(path)
	if err != nil {
		return nil, err
	}

	return spec.Build()
}

func logPoses(s *scene.Scene) {
	for _, name := range s.Names() {
		body, _ := s.Body(name)
		p := body.Pose.Position
		log.Printf("%-12s position=(%.3f, %.3f, %.3f) speed=%.3f", name, p.X(), p.Y(), p.Z(), body.Velocity.Len())
	}
}

// watchScene runs the scene in real time and rebuilds it on every change of its file
func watchScene(ctx context.Context, path string) error {
	watcher, err := scene.NewWatcher(path)
	if err != nil {
		return err
	}
	defer watcher.Close()

	for {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})

		s, err := build(path)
		if err != nil {
			log.Printf("load scene: %v", err)
			close(done)
		} else {
			log.Printf("running %s with %d bodies", path, len(s.World.Bodies()))
			host := scene.NewHost(s.World)
			for _, name := range s.Names() {
				body, _ := s.Body(name)
				host.Bind(body, floorLogger(name))
			}
			s.World.Events.Subscribe(xpbd.COLLISION_ENTER, func(event xpbd.Event) {
				e := event.(xpbd.CollisionEnterEvent)
				if e.BodyB == nil {
					return
				}
				log.Printf("contact at tick %d", s.World.Ticks())
			})
			go func() {
				defer close(done)
				_ = host.Run(runCtx)
			}()
		}

		select {
		case <-ctx.Done():
			cancel()
			<-done
			return ctx.Err()
		case name, ok := <-watcher.Events:
			cancel()
			<-done
			if !ok {
				return nil
			}
			log.Printf("%s changed, reloading", name)
		case err, ok := <-watcher.Errors:
			cancel()
			<-done
			if !ok {
				return nil
			}
			return err
		}
	}
}

// floorLogger reports when a body comes to rest
func floorLogger(name string) scene.Entity {
	var last actor.Pose
	resting := false
	return scene.EntityFunc(func(pose actor.Pose) {
		moved := pose.Position.Sub(last.Position).Len()
		last = pose
		if moved < 1e-4 && !resting {
			resting = true
			log.Printf("%s at rest at y=%.3f", name, pose.Position.Y())
		} else if moved >= 1e-4 {
			resting = false
		}
	})
}
