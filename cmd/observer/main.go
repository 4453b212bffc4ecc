// Command observer joins a room as a passive client, mirrors its scene and
// logs every change. On exit it can write the mirrored scene as a PNG.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/dkeye/Sketch/internal/adapters/wsclient"
	"github.com/dkeye/Sketch/internal/client"
	"github.com/dkeye/Sketch/internal/client/scene"
	"github.com/dkeye/Sketch/internal/client/ui"
	"github.com/dkeye/Sketch/internal/discovery"
	"github.com/dkeye/Sketch/internal/domain"
	"github.com/dkeye/Sketch/internal/export"
)

func main() {
	url := flag.String("url", "", "relay websocket url, e.g. ws://localhost:8080/api/ws")
	room := flag.String("room", "lobby", "room to observe")
	browse := flag.Bool("browse", false, "find a relay with mDNS when --url is empty")
	service := flag.String("service", discovery.DefaultService, "mDNS service name")
	timeout := flag.Duration("timeout", 2*time.Second, "mDNS query timeout")
	png := flag.String("png", "", "write the scene to this PNG file on exit")
	size := flag.IntSlice("size", []int{1920, 1080}, "PNG width,height")
	verbose := flag.BoolP("verbose", "v", false, "log cursor moves")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	target := *url
	if target == "" {
		if !*browse {
			log.Fatal().Msg("either --url or --browse is required")
		}
		addrs, err := discovery.Browse(*service, *timeout)
		if err != nil && len(addrs) == 0 {
			log.Fatal().Err(err).Msg("mdns browse failed")
		}
		if len(addrs) == 0 {
			log.Fatal().Str("service", *service).Msg("no relay found")
		}
		target = fmt.Sprintf("ws://%s/api/ws", addrs[0])
	}

	link, err := wsclient.Dial(ctx, target, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", target).Msg("dial failed")
	}
	defer link.Close()
	log.Info().Str("url", target).Str("room", *room).Msg("observer connected")

	sc := scene.NewMemory()
	sc.SetHooks(scene.Hooks{
		Added: func(o domain.Object) {
			log.Info().Str("id", string(o.ID())).Str("kind", string(o.Kind())).Msg("added")
		},
		Modified: func(o domain.Object) {
			log.Info().Str("id", string(o.ID())).Msg("modified")
		},
		Removed: func(id domain.ObjectID) {
			log.Info().Str("id", string(id)).Msg("removed")
		},
	})

	// Hand tool keeps mirrored objects inert.
	st := ui.NewStatic()
	st.SetTool(ui.ToolHand)
	s := client.NewSession(domain.RoomID(*room), link, sc, st)
	s.OnCursor = func(c domain.Cursor) {
		log.Debug().Str("user", string(c.UserID)).Float64("x", c.X).Float64("y", c.Y).Msg("cursor")
	}

	err = s.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
	case errors.Is(err, client.ErrStopped):
		log.Warn().Msg("relay closed the connection")
	case err != nil:
		log.Error().Err(err).Msg("session failed")
	}

	objs := sc.Objects()
	log.Info().Int("objects", len(objs)).Int("snapshots", s.History.Len()).Msg("observer finished")

	if *png == "" {
		return
	}
	if len(*size) != 2 {
		log.Fatal().Ints("size", *size).Msg("--size takes width,height")
	}
	f, err := os.Create(*png)
	if err != nil {
		log.Fatal().Err(err).Msg("create png")
	}
	defer f.Close()
	if err := export.PNG(f, objs, (*size)[0], (*size)[1]); err != nil {
		log.Error().Err(err).Msg("png export failed")
		return
	}
	log.Info().Str("file", *png).Msg("scene written")
}
