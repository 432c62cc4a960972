package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/jackpal/gateway"
	"github.com/mdp/qrterminal/v3"

	"qrshare/internal/transfer"
)

// DefaultPort is the TCP port the server listens on unless -p is given.
const DefaultPort = 5000

// Use ascii blocks to form the QR Code
const BLACK_WHITE = "▄"
const BLACK_BLACK = " "
const WHITE_BLACK = "▀"
const WHITE_WHITE = "█"

// options is the parsed command line.
type options struct {
	cfg  transfer.Config
	port int
	addr string
	noQR bool
	help bool
}

// parseArgs turns the command line (without the program name) into options.
// Flags come first, then the mode: "upload" or "download <file> [gzip]".
func parseArgs(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("qrshare", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.help, "h", false, "Show help information")
	fs.IntVar(&opts.port, "p", DefaultPort, "Port to listen on")
	fs.StringVar(&opts.addr, "addr", "", "IP address to bind (default: discovered LAN address)")
	fs.BoolVar(&opts.noQR, "no-qr", false, "Do not print the QR code")
	dir := fs.String("dir", transfer.DefaultDir, "Directory for uploads and downloads")
	fs.DurationVar(&opts.cfg.Timeout, "timeout", transfer.DefaultTimeout, "Idle limit per read or write, 0 to wait forever")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.help {
		return opts, nil
	}
	if opts.port < 0 || opts.port > 65535 {
		return opts, fmt.Errorf("invalid port %d", opts.port)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return opts, errors.New("missing command")
	}
	switch strings.ToLower(rest[0]) {
	case "upload":
		if len(rest) != 1 {
			return opts, errors.New("upload takes no arguments")
		}
		opts.cfg.Mode = transfer.Upload
		opts.cfg.Dir = *dir
	case "download":
		if len(rest) < 2 || len(rest) > 3 {
			return opts, errors.New("usage: download <filename> [gzip]")
		}
		if len(rest) == 3 {
			if !strings.EqualFold(rest[2], "gzip") {
				return opts, fmt.Errorf("unknown download option %q", rest[2])
			}
			opts.cfg.Gzip = true
		}
		opts.cfg.Mode = transfer.Download
		opts.cfg.File = filepath.Join(*dir, rest[1])
	default:
		return opts, fmt.Errorf("unknown command %q", rest[0])
	}
	return opts, opts.cfg.Validate()
}

// localIPString returns the IPv4 address of the interface that shares a
// subnet with the default gateway.
func localIPString() (string, error) {
	// Discover the default gateway's IP address
	gwIP, err := gateway.DiscoverGateway()
	if err != nil {
		return "", fmt.Errorf("failed to discover gateway: %w", err)
	}

	// Find the local IP address associated with the interface that connects to the gateway
	localIP, err := getLocalIPForGateway(gwIP)
	if err != nil {
		return "", fmt.Errorf("failed to find local IP for gateway: %w", err)
	}
	return localIP.String(), nil
}

// getLocalIPForGateway finds the local IP that is in the same subnet as the gateway IP
func getLocalIPForGateway(gwIP net.IP) (net.IP, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve network interfaces: %w", err)
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		// An interface whose addresses cannot be read is skipped
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		if ip := matchGatewaySubnet(addrs, gwIP); ip != nil {
			return ip, nil
		}
	}

	return nil, fmt.Errorf("no local IPv4 address found in the same subnet as gateway %s", gwIP.String())
}

// matchGatewaySubnet returns the first global unicast IPv4 address whose
// network contains gwIP.
func matchGatewaySubnet(addrs []net.Addr, gwIP net.IP) net.IP {
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}

		ipv4 := ipnet.IP.To4()
		if ipv4 == nil || !ipv4.IsGlobalUnicast() || ipv4.IsLoopback() {
			continue
		}
		if ipnet.Contains(gwIP) {
			return ipv4
		}
	}
	return nil
}

// outboundIP asks the kernel which source address it would use to reach a
// public host. No packet is sent for a UDP "connection".
func outboundIP() (string, error) {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("failed to resolve outbound address: %w", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}

// printQR renders url as a terminal QR code.
func printQR(w io.Writer, url string) {
	config := qrterminal.Config{
		Level:          qrterminal.M,
		Writer:         w,
		HalfBlocks:     true,
		BlackChar:      BLACK_BLACK,
		WhiteBlackChar: WHITE_BLACK,
		WhiteChar:      WHITE_WHITE,
		BlackWhiteChar: BLACK_WHITE,
		QuietZone:      1,
	}
	qrterminal.GenerateWithConfig(url, config)
}

// printHelp shows help information
func printHelp(w io.Writer) {
	writer := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "Share one file with a phone, or receive one, by scanning a QR code.")
	fmt.Fprintln(writer, "=============================")
	fmt.Fprintln(writer, "Usage:")
	fmt.Fprintln(writer, "  qrshare [OPTIONS] upload")
	fmt.Fprintln(writer, "  qrshare [OPTIONS] download <filename> [gzip]")
	fmt.Fprintln(writer, "")
	fmt.Fprintln(writer, "Commands:")
	fmt.Fprintln(writer, "  upload\tServe a form that stores one uploaded file per request in -dir")
	fmt.Fprintln(writer, "  download\tServe <filename> from -dir; add gzip to compress for clients that accept it")
	fmt.Fprintln(writer, "")
	fmt.Fprintln(writer, "Options:")
	fmt.Fprintln(writer, "  -h\tShow this help message and exit")
	fmt.Fprintf(writer, "  -p PORT\tPort to listen on (default %d)\n", DefaultPort)
	fmt.Fprintf(writer, "  -dir DIR\tDirectory for uploads and downloads (default %s)\n", transfer.DefaultDir)
	fmt.Fprintln(writer, "  -addr IP\tAddress to bind instead of the discovered LAN address")
	fmt.Fprintf(writer, "  -timeout DURATION\tDrop a client idle this long, 0 waits forever (default %s)\n", transfer.DefaultTimeout)
	fmt.Fprintln(writer, "  -no-qr\tDo not print the QR code")
	fmt.Fprintln(writer, "")
	fmt.Fprintln(writer, "Environment:")
	fmt.Fprintf(writer, "  %s\tdebug, info, warn or error (default info)\n", envLogLevel)
	fmt.Fprintf(writer, "  %s\tjson for JSON lines, console otherwise\n", envLogFormat)
	writer.Flush()
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printHelp(os.Stderr)
		os.Exit(1)
	}
	if opts.help {
		printHelp(os.Stdout)
		return
	}

	logger := newLogger(os.Stderr, os.Getenv)
	srv, err := transfer.NewServer(opts.cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ip := opts.addr
	if ip == "" {
		ip, err = localIPString()
		if err != nil {
			logger.Warn().Err(err).Msg("gateway lookup failed, using outbound route")
			ip, err = outboundIP()
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to get local IP address")
			}
		}
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(ip, strconv.Itoa(opts.port)))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}

	url := "http://" + ln.Addr().String()
	fmt.Printf("Server started at: %s\n", url)
	fmt.Printf("- Mode: %s\n", strings.ToUpper(opts.cfg.Mode.String()))
	if opts.cfg.Mode == transfer.Download {
		fmt.Printf("- File: %s (gzip: %t)\n", opts.cfg.File, opts.cfg.Gzip)
		fmt.Printf("\nScan below qrcode to download file: %s\n", filepath.Base(opts.cfg.File))
	} else {
		fmt.Printf("- Saving uploads to: %s\n", opts.cfg.Dir)
		fmt.Printf("\nScan below qrcode to upload a file.\n")
	}
	if !opts.noQR {
		printQR(os.Stdout, url)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Serve(ctx, ln); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	logger.Info().Msg("shutdown complete")
}
