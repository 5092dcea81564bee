package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/vtable/internal/server"
)

type serveOpts struct {
	table tableFlags
	addr  string
}

// serveCommand creates the serve command, which exposes windows over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve windows to a browser over HTTP",
		Long: `Start an HTTP API for a browser-side renderer. The page keeps a container
of height totalExtent, reports its scroll offset and viewport, and positions
the returned rows at their start offsets.

Routes:
  GET /healthz
  GET /api/version
  GET /api/columns
  GET /api/window?scroll=&viewport=&overscan=&cells=
  GET /api/rows/{index}
  GET /api/reveal/{index}?scroll=&viewport=`,
		Example: `  vtable serve --addr :9000
  curl 'localhost:9000/api/window?scroll=5000'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, opts)
		},
	}

	addTableFlags(cmd, &opts.table)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts serveOpts) error {
	d, err := c.newDataset(cmd, &opts.table)
	if err != nil {
		return err
	}
	addr := d.cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}

	srv, err := server.New(server.Options{
		Source:    d.source,
		Sizer:     d.sizer,
		Columns:   d.columns,
		Formatter: d.formatter,
		Viewport:  d.cfg.Viewport,
		Overscan:  d.cfg.Overscan,
		Logger:    loggerFromContext(cmd.Context()),
	})
	if err != nil {
		return err
	}

	printInfo("Serving %d rows", d.source.Len())
	printKeyValue("address", addr)
	printNextStep("Try", "curl 'http://"+localURL(addr)+"/api/window?scroll=5000'")
	return srv.Run(cmd.Context(), addr)
}

// localURL turns a listen address like ":8080" into "localhost:8080".
func localURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
