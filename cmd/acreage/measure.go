// ABOUTME: Interactive measurement command
// ABOUTME: Serves the map surface, runs a session and reads commands from stdin

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/harper/acreage/internal/bridge"
	"github.com/harper/acreage/internal/geometry"
	"github.com/harper/acreage/internal/locate"
	"github.com/harper/acreage/internal/models"
	"github.com/harper/acreage/internal/observability"
	"github.com/harper/acreage/internal/session"
	"github.com/harper/acreage/internal/ui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var measureCmd = &cobra.Command{
	Use:     "measure",
	Aliases: []string{"m"},
	Short:   "Start an interactive measuring session",
	Long: `Start a measuring session. The map is served on --listen; open it in a
browser and click to drop points, or type commands at the prompt.

Without --track the device position comes from --lat/--lng and the
"here" command. With --track a recorded walk (GeoJSON or encoded
polyline) is replayed when tracking is started.

Examples:
  acreage measure
  acreage measure --lat 37.0 --lng -122.0
  acreage measure --edit "north field"
  acreage measure --track walk.geojson --pace 500ms
  acreage measure --headless`,
	RunE: runMeasure,
}

var (
	measureEdit     string
	measureTrack    string
	measurePace     time.Duration
	measureListen   string
	measureLat      float64
	measureLng      float64
	measureHeadless bool
)

func init() {
	measureCmd.Flags().StringVar(&measureEdit, "edit", "", "open a saved area for editing")
	measureCmd.Flags().StringVar(&measureTrack, "track", "", "replay a recorded track file as the device position")
	measureCmd.Flags().DurationVar(&measurePace, "pace", time.Second, "delay between replayed track samples")
	measureCmd.Flags().StringVar(&measureListen, "listen", "", "map surface address (default from config)")
	measureCmd.Flags().Float64Var(&measureLat, "lat", 0, "starting device latitude")
	measureCmd.Flags().Float64Var(&measureLng, "lng", 0, "starting device longitude")
	measureCmd.Flags().BoolVar(&measureHeadless, "headless", false, "run without serving the map page")

	rootCmd.AddCommand(measureCmd)
}

func runMeasure(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	layers, err := cfg.GetLayers()
	if err != nil {
		return err
	}
	watch, err := cfg.WatchOptions()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := observability.New(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	var (
		transport bridge.Transport
		surface   *bridge.Surface
	)
	if measureHeadless {
		host, end := bridge.Pipe()
		transport = host
		surface = bridge.NewSurface(end, logger)
	} else {
		listen := measureListen
		if listen == "" {
			listen = cfg.GetListen()
		}
		ln, err := net.Listen("tcp", listen)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", listen, err)
		}
		httpT := bridge.NewHTTPTransport(metrics.Gatherer(), logger)
		go func() {
			if err := httpT.Serve(ln); err != nil {
				logger.Error("map surface stopped", "err", err)
			}
		}()
		transport = httpT
		color.Cyan("Map: http://%s/", ln.Addr().String())
	}

	b := bridge.New(transport, layers, bridge.Options{Logger: logger, Metrics: metrics})
	defer func() { _ = b.Close() }()

	source, feed, err := measureSource()
	if err != nil {
		return err
	}

	sess, err := session.New(session.Options{
		Bridge:        b,
		Source:        source,
		Repo:          repo,
		Owner:         owner(),
		Layers:        layers,
		DefaultRegion: cfg.DefaultRegion,
		Watch:         watch,
		Logger:        logger,
		Metrics:       metrics,
		Refresher: session.RefresherFunc(func(ctx context.Context, rec *models.AreaRecord) {
			logger.Info("area saved", "name", rec.Name, "hectares", rec.Hectares)
		}),
	})
	if err != nil {
		return err
	}
	defer sess.Close()
	b.SetHandler(sess)

	if err := sess.Open(ctx); err != nil {
		color.Yellow("⚠ %v, showing the default region", err)
	}
	if surface != nil {
		if err := surface.Reload(ctx); err != nil {
			return fmt.Errorf("failed to load surface: %w", err)
		}
	}
	if measureEdit != "" {
		if _, err := sess.Edit(ctx, measureEdit); err != nil {
			return err
		}
	}

	r := &repl{sess: sess, feed: feed, surface: surface, out: cmd.OutOrStdout()}
	return r.run(ctx, cmd.InOrStdin())
}

// measureSource picks the device position source from the flags.
func measureSource() (locate.Source, *locate.Feed, error) {
	if measureTrack != "" {
		track, err := locate.LoadTrack(measureTrack)
		if err != nil {
			return nil, nil, err
		}
		return &locate.Replay{Track: track, Step: measurePace, Pace: measurePace}, nil, nil
	}
	feed := locate.NewFeed()
	if measureLat != 0 || measureLng != 0 {
		v := models.Vertex{Latitude: measureLat, Longitude: measureLng}
		if err := v.Validate(); err != nil {
			return nil, nil, err
		}
		feed.Push(v)
	}
	return feed, feed, nil
}

const replHelp = `Commands:
  add LAT LNG        add a point
  tap LAT LNG        tap the map (headless only)
  here LAT LNG       move the device position
  clear              remove all points
  center             recenter on the device position
  layer [NAME]       cycle or select the base layer
  units [AREA] [LEN] change display units (ha, m2, km2 / m, km)
  track start|stop   follow the device position
  status             show the current figures
  scene              show what the map draws (headless only)
  save NAME          save the polygon
  edit NAME          load a saved area
  help               show this help
  quit               leave the session
`

// repl reads one command per line and applies it to the session.
type repl struct {
	sess    *session.Session
	feed    *locate.Feed
	surface *bridge.Surface
	out     io.Writer
}

var errQuit = errors.New("quit")

func (r *repl) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprint(r.out, "> ")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := r.exec(ctx, strings.Fields(line))
			if errors.Is(err, errQuit) {
				return nil
			}
			if errors.Is(err, session.ErrClosed) {
				return err
			}
			if err != nil {
				fmt.Fprintln(r.out, color.RedString("error: %v", err))
			}
			fmt.Fprint(r.out, "> ")
		}
	}
}

func (r *repl) exec(ctx context.Context, fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "add", "a":
		v, err := parseLatLng(args)
		if err != nil {
			return err
		}
		if err := r.sess.AddVertex(ctx, v); err != nil {
			return err
		}
		return r.status(ctx)
	case "tap":
		if r.surface == nil {
			return errors.New("tap needs --headless; click the map instead")
		}
		v, err := parseLatLng(args)
		if err != nil {
			return err
		}
		return r.surface.Click(ctx, v)
	case "here":
		if r.feed == nil {
			return errors.New("device position comes from the track file")
		}
		v, err := parseLatLng(args)
		if err != nil {
			return err
		}
		r.feed.Push(v)
		return nil
	case "clear":
		return r.sess.Clear(ctx)
	case "center":
		return r.sess.Recenter(ctx)
	case "layer":
		if len(args) == 0 {
			name, err := r.sess.ToggleLayer(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "layer %s\n", name)
			return nil
		}
		return r.sess.SelectLayer(ctx, args[0])
	case "units":
		return r.units(ctx, args)
	case "track":
		if len(args) != 1 {
			return errors.New("usage: track start|stop")
		}
		switch args[0] {
		case "start":
			return r.sess.StartTracking(ctx)
		case "stop":
			return r.sess.StopTracking(ctx)
		default:
			return fmt.Errorf("unknown track action %q", args[0])
		}
	case "status", "s":
		return r.status(ctx)
	case "scene":
		return r.scene()
	case "save":
		if len(args) == 0 {
			return errors.New("usage: save NAME")
		}
		rec, err := r.sess.Save(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, color.GreenString("✓ Saved %s (%.4f ha)", rec.Name, rec.Hectares))
		return nil
	case "edit":
		if len(args) == 0 {
			return errors.New("usage: edit NAME")
		}
		rec, err := r.sess.Edit(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "editing %s\n", rec.Name)
		return r.status(ctx)
	case "help", "?":
		fmt.Fprint(r.out, replHelp)
		return nil
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", fields[0])
	}
}

func (r *repl) units(ctx context.Context, args []string) error {
	var (
		areaUnit   geometry.AreaUnit
		lengthUnit geometry.LengthUnit
		err        error
	)
	if len(args) > 0 {
		if areaUnit, err = geometry.ParseAreaUnit(args[0]); err != nil {
			return err
		}
	}
	if len(args) > 1 {
		if lengthUnit, err = geometry.ParseLengthUnit(args[1]); err != nil {
			return err
		}
	}
	if err := r.sess.ConvertUnits(ctx, areaUnit, lengthUnit); err != nil {
		return err
	}
	return r.status(ctx)
}

func (r *repl) status(ctx context.Context) error {
	st, err := r.sess.Snapshot(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, ui.FormatStatus(len(st.Vertices), st.Result, st.Layer, st.Tracking, st.EditingName))
	fmt.Fprint(r.out, ui.FormatResult(st.Result))
	return nil
}

func (r *repl) scene() error {
	if r.surface == nil {
		return errors.New("scene needs --headless; look at the map instead")
	}
	sc := r.surface.Scene()
	fmt.Fprintf(r.out, "layer %s, center %s, zoom %d\n", sc.BaseLayer, ui.FormatVertex(sc.Center), sc.Zoom)
	fmt.Fprintf(r.out, "%d markers, ring of %d\n", len(sc.Markers), len(sc.Ring))
	if sc.AreaLabel != nil {
		fmt.Fprintf(r.out, "label %q at %s\n", sc.AreaLabel.Text, ui.FormatVertex(sc.AreaLabel.Position))
	}
	for _, l := range sc.EdgeLabels {
		fmt.Fprintf(r.out, "  edge %q\n", l.Text)
	}
	return nil
}

// parseLatLng accepts "LAT LNG" or "LAT,LNG".
func parseLatLng(args []string) (models.Vertex, error) {
	if len(args) == 1 {
		return parseVertex(args[0])
	}
	if len(args) != 2 {
		return models.Vertex{}, errors.New("expected LAT LNG")
	}
	return parseVertex(args[0] + "," + args[1])
}

// parseVertex parses "LAT,LNG" and validates the range.
func parseVertex(s string) (models.Vertex, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return models.Vertex{}, fmt.Errorf("invalid point %q (use LAT,LNG)", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Vertex{}, fmt.Errorf("invalid latitude %q", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Vertex{}, fmt.Errorf("invalid longitude %q", parts[1])
	}
	v := models.Vertex{Latitude: lat, Longitude: lng}
	if err := v.Validate(); err != nil {
		return models.Vertex{}, err
	}
	return v, nil
}
