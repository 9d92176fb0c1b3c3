package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gocv.io/x/gocv"

	"rescuecam/camera"
	"rescuecam/config"
	"rescuecam/link"
	"rescuecam/overlay"
	"rescuecam/priority"
	"rescuecam/protocol"
	"rescuecam/region"
	"rescuecam/segment"
	"rescuecam/tracking"
	"rescuecam/vision"
)

const (
	loopInterval = 50 * time.Millisecond // pacing between frames

	// Sequencer tuning.
	noTargetStopAfter = 10              // empty frames before sending stop
	targetLostAfter   = 3               // lost frames before giving up an approach
	approachMaxFrames = 30              // frames before forcing a grasp attempt
	graspRadius       = 30              // apparent radius that means "close enough"
	actionDwell       = 2 * time.Second // grasp/place settle time
	zoneSearchSpeed   = 30              // rotate speed while hunting for a zone
)

var (
	// Command-line flags
	strategyPath  = flag.String("strategy", "config/game_strategy.json", "Game strategy JSON file\n\t\tMissing file falls back to the built-in competition defaults")
	thresholdPath = flag.String("thresholds", "config/hsv_thresholds.json", "HSV threshold JSON file\n\t\tMissing file falls back to the built-in threshold table")
	teamOverride  = flag.String("team", "", "Override the configured team color (red or blue)")
	serialPort    = flag.String("port", "", "Serial port to the motor controller (overrides config)\n\t\tExample: -port=/dev/ttyUSB0")
	serialBaud    = flag.Int("baud", 0, "Serial baud rate (overrides config)")
	exposure      = flag.String("exposure", "competition", "Exposure preset: competition, bright, dim, dark")
	adaptiveLight = flag.Bool("adaptive-light", false, "Enable illumination-adaptive threshold shifting")
	zoneSmoothing = flag.Int("zone-smoothing", 0, "Frames to keep a vanished drop zone alive (0 disables)")
	snapshotDir   = flag.String("snapshot-dir", "", "Directory for periodic annotated JPEG snapshots (empty disables)")
	snapshotEvery = flag.Duration("snapshot-interval", 5*time.Second, "Interval between snapshots (requires -snapshot-dir)")
	maxRunTime    = flag.Duration("max-runtime", 5*time.Minute, "Wall-clock budget before the run shuts itself down")
)

// robotState is the outer sequencer's five-state cycle.
type robotState int

const (
	stateSearchTarget robotState = iota
	stateApproach
	stateGrasp
	stateSearchZone
	statePlace
)

func (s robotState) String() string {
	switch s {
	case stateSearchTarget:
		return "search-target"
	case stateApproach:
		return "approach"
	case stateGrasp:
		return "grasp"
	case stateSearchZone:
		return "search-zone"
	case statePlace:
		return "place"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// sequencer drives the search → approach → grasp → search-zone → place
// cycle and owns the carrying state the prioritizer needs.
type sequencer struct {
	state      robotState
	stateSince time.Time
	pick       priority.PickState
	held       []tracking.ColorClass

	noTargetFrames int
	approachFrames int
	lostFrames     int
	pendingClass   tracking.ColorClass
}

func newSequencer() *sequencer {
	return &sequencer{state: stateSearchTarget, stateSince: time.Now(), pick: priority.FirstPickPending}
}

func (s *sequencer) transition(next robotState) {
	log.Printf("[SEQ] %s -> %s", s.state, next)
	s.state = next
	s.stateSince = time.Now()
	s.approachFrames = 0
	s.lostFrames = 0
	s.noTargetFrames = 0
}

// step advances the sequencer one frame and returns the wire frames to
// send this cycle.
func (s *sequencer) step(result vision.Result, frameW, frameH int) [][]byte {
	var sends [][]byte
	target := result.Target

	switch s.state {
	case stateSearchTarget:
		if target != nil {
			s.pendingClass = target.Class
			s.transition(stateApproach)
			break
		}
		s.noTargetFrames++
		if s.noTargetFrames >= noTargetStopAfter {
			sends = append(sends, protocol.EncodeStop())
			s.noTargetFrames = 0
		}

	case stateApproach:
		if target == nil {
			s.lostFrames++
			if s.lostFrames >= targetLostAfter {
				sends = append(sends, protocol.EncodeStop())
				s.transition(stateSearchTarget)
			}
			break
		}
		s.lostFrames = 0
		s.approachFrames++
		s.pendingClass = target.Class

		if id, ok := protocol.ClassID(target.Class); ok {
			dx := target.X - frameW/2
			dy := frameH/2 - target.Y
			dist := protocol.EstimateDistance(target.Radius)
			sends = append(sends, protocol.EncodeTarget(dx, dy, id, dist))
		}
		if target.Radius > graspRadius || s.approachFrames >= approachMaxFrames {
			s.transition(stateGrasp)
		}

	case stateGrasp:
		if time.Since(s.stateSince) < actionDwell {
			sends = append(sends, protocol.EncodeGrasp(true))
			break
		}
		// The first object is physically secured: the latch flips, once,
		// for the lifetime of the run.
		s.pick = s.pick.CompleteFirstPick()
		s.held = append(s.held, s.pendingClass)
		s.transition(stateSearchZone)

	case stateSearchZone:
		// Everything we carry is bound for our own drop zone.
		if result.Zones != nil && result.Zones.Get(teamColor) != nil {
			s.transition(statePlace)
			break
		}
		sends = append(sends, protocol.EncodeRotate(zoneSearchSpeed))

	case statePlace:
		if time.Since(s.stateSince) < actionDwell {
			sends = append(sends, protocol.EncodePlace(0))
			break
		}
		s.held = nil
		s.transition(stateSearchTarget)
	}
	return sends
}

// teamColor is resolved once at startup from config and flags.
var teamColor tracking.ColorClass

func main() {
	flag.Parse()

	cfg, err := config.Load(*strategyPath)
	if err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}
	thresholds, err := config.LoadThresholds(*thresholdPath)
	if err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}

	if *teamOverride != "" {
		if *teamOverride != "red" && *teamOverride != "blue" {
			log.Fatalf("[CONFIG] -team must be red or blue, got %q", *teamOverride)
		}
		cfg.TeamColor = teamOverride
	}
	teamColor = cfg.Team()
	rules := cfg.Ruleset()
	log.Printf("[CONFIG] team=%s enemy=%s", rules.TeamColor, rules.EnemyColor)

	seg := segment.NewSegmenter(thresholds)
	if enabled, delta := cfg.AdaptiveLighting(); enabled || *adaptiveLight {
		seg.EnableAdaptiveLighting(delta)
		log.Printf("[CONFIG] adaptive lighting enabled (delta=%.0f)", delta)
	}

	minR, maxR := cfg.RadiusBounds()
	core := vision.NewCore(
		seg,
		tracking.NewTracker(minR, maxR),
		region.NewDetector(seg),
		priority.NewSelector(rules),
		overlay.NewRenderer(cfg.Palette()),
	)
	if *zoneSmoothing > 0 {
		core.EnableZoneSmoothing(*zoneSmoothing)
	}

	width, height := cfg.ImageSize()
	cam, err := camera.Open(cfg.CameraID(), width, height, camera.PresetByName(*exposure))
	if err != nil {
		log.Fatalf("[CAMERA] %v", err)
	}
	defer cam.Close()

	portPath, baud := cfg.SerialPort()
	if *serialPort != "" {
		portPath = *serialPort
	}
	if *serialBaud > 0 {
		baud = *serialBaud
	}
	serial := link.New(portPath, baud, nil)
	if err := serial.Connect(); err != nil {
		// Degraded mode: keep perceiving, retry the link every cycle.
		log.Printf("[LINK] %v; running without controller until it appears", err)
	}
	defer serial.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	runLoop(core, cam, serial, stop)
	log.Printf("[MAIN] shut down")
}

// runLoop is the single-threaded cooperative pipeline: one frame in, one
// decision out, one send and one feedback poll per iteration. Frames are
// processed strictly in acquisition order.
func runLoop(core *vision.Core, cam *camera.Manager, serial *link.Link, stop <-chan os.Signal) {
	seq := newSequencer()
	frame := gocv.NewMat()
	defer frame.Close()

	deadline := time.Now().Add(*maxRunTime)
	lastSnapshot := time.Now()
	var frameCount int64

	for {
		select {
		case sig := <-stop:
			log.Printf("[MAIN] received %v, stopping", sig)
			return
		default:
		}
		if time.Now().After(deadline) {
			log.Printf("[MAIN] run time budget elapsed")
			return
		}

		if err := cam.Read(&frame); err != nil {
			// Camera loss is the one unrecoverable condition.
			log.Printf("[MAIN] %v", err)
			return
		}
		frameCount++

		result := core.ProcessFrame(&frame, seq.pick, seq.held, seq.state.String())
		if result.Target != nil {
			log.Printf("[VISION] target %s at (%d,%d) r=%d",
				result.Target.Class, result.Target.X, result.Target.Y, result.Target.Radius)
		}

		for _, wire := range seq.step(result, frame.Cols(), frame.Rows()) {
			if err := serial.Send(wire); err != nil {
				// No command this cycle; the link reconnects on the
				// next send.
				log.Printf("[LINK] send: %v", err)
				break
			}
		}

		if fb, ok := serial.PollFeedback(); ok {
			log.Printf("[LINK] feedback type=0x%02X state=0x%02X", fb.Type, fb.State)
		}

		if *snapshotDir != "" && time.Since(lastSnapshot) >= *snapshotEvery {
			path := filepath.Join(*snapshotDir, fmt.Sprintf("frame-%06d.jpg", frameCount))
			if ok := gocv.IMWrite(path, frame); !ok {
				log.Printf("[MAIN] snapshot write failed: %s", path)
			}
			lastSnapshot = time.Now()
		}

		time.Sleep(loopInterval)
	}
}
