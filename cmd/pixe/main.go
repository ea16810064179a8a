package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/gamedevlabs/pixe"
	"github.com/gamedevlabs/pixe/pkg/api"
	"github.com/gamedevlabs/pixe/pkg/draw"
	"github.com/gamedevlabs/pixe/pkg/render"
)

const (
	checkmark = "✓"
	crossmark = "✗"
	ellipsis  = "…"
)

func main() {
	godotenv.Load()
	pixe.SetLogLevel(envOr("PIXE_LOG_LEVEL", "warning"))

	app := kingpin.New("pixe", "pix:e moodboard tool")
	app.HelpFlag.Short('h')

	app.Command("ls", "List moodboards").Default()

	export := app.Command("export", "Export one or more moodboards")
	var (
		matchExport = export.Arg("match", "Board title must contain this").String()
		outDir      = export.Flag("output", "Output directory").Short('o').Default(".").String()
		format      = export.Flag("format", "Export format (png, jpeg, pdf)").Short('f').Default("png").String()
		scale       = export.Flag("scale", "Pixel scale factor").Default("1.0").Float64()
		validate    = export.Flag("validate", "Validate exported PDF files").Bool()
	)

	imp := app.Command("import", "Import an image from a URL or local file into a board")
	var (
		boardID  = imp.Arg("board", "Board id").Required().String()
		imageRef = imp.Arg("image", "Image URL or file path").Required().String()
	)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	var err error
	switch command {
	case "ls":
		err = doLs()
	case "export":
		err = doExport(*matchExport, *outDir, *format, *scale, *validate)
	case "import":
		err = doImport(*boardID, *imageRef)
	default:
		err = fmt.Errorf("unknown command: %q", command)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func doLs() error {
	store, err := setupStorage()
	if err != nil {
		return err
	}

	boards, err := store.List()
	if err != nil {
		return err
	}

	if len(boards) == 0 {
		fmt.Println("No moodboards found.")
		return nil
	}

	fmt.Println("pix:e Moodboards")
	fmt.Println("----------------")

	dateFormat := "Jan 02 2006, 15:04"
	for _, mb := range boards {
		title := mb.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%v  %v | %v\n", mb.ID, mb.LastModified.Format(dateFormat), title)
	}

	return nil
}

// export ---------------------------------------------------------------------

func doExport(match, outDir, format string, scale float64, validate bool) error {
	switch format {
	case "png", "jpeg", "pdf":
		// ok
	default:
		return fmt.Errorf("unsupported format, choose one of 'png', 'jpeg', 'pdf'")
	}

	store, err := setupStorage()
	if err != nil {
		return err
	}

	boards, err := store.List()
	if err != nil {
		return err
	}

	rc := render.NewContext()
	rc.Scale = scale
	if dir := os.Getenv("PIXE_DATA_DIR"); dir != "" {
		rc.SetCache(pixe.NewFilesystemCache(filepath.Join(dir, "cache")))
	}
	if proxy := os.Getenv("PIXE_IMAGE_PROXY"); proxy != "" {
		rc.SetProxy(proxy)
	}

	matched := 0
	var group errgroup.Group
	for _, mb := range boards {
		if match != "" && !strings.Contains(strings.ToLower(mb.Title), strings.ToLower(match)) {
			continue
		}
		matched++

		id := mb.ID
		group.Go(func() error {
			return exportBoard(rc, store, id, outDir, format, validate)
		})
	}

	if matched == 0 {
		fmt.Printf("No matching moodboards for %q\n", match)
		return nil
	}

	return group.Wait()
}

func exportBoard(rc *render.Context, store pixe.Storage, id, outDir, format string, validate bool) error {
	fmt.Printf("%v fetch board %v\n", ellipsis, id)
	mb, err := store.Moodboard(id)
	if err != nil {
		fmt.Printf("%v Failed to fetch board %v: %v\n", crossmark, id, err)
		return err
	}

	layer, err := decodeDrawingLayer(mb)
	if err != nil {
		fmt.Printf("%v Board %q has an unreadable drawing layer, exporting without it\n", crossmark, mb.Title)
		layer = nil
	}

	path := filepath.Join(outDir, render.ExportFilename(mb.Title, format))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Printf("%v render %q\n", ellipsis, mb.Title)
	switch format {
	case "png":
		err = rc.PNG(mb, layer, f)
	case "jpeg":
		err = rc.JPEG(mb, layer, f)
	case "pdf":
		err = rc.PDF(mb, layer, f)
	}
	if err != nil {
		fmt.Printf("%v Failed to render %q: %v\n", crossmark, mb.Title, err)
		return err
	}

	if format == "pdf" && validate {
		err = f.Close()
		if err != nil {
			return err
		}
		err = render.ValidatePDF(path)
		if err != nil {
			fmt.Printf("%v Exported PDF %q failed validation: %v\n", crossmark, path, err)
			return err
		}
	}

	fmt.Printf("%v board %q saved as %q.\n", checkmark, mb.Title, path)
	return nil
}

// decodeDrawingLayer rebuilds the raster drawing layer from the
// board's persisted base64 PNG.
func decodeDrawingLayer(mb *pixe.Moodboard) (*image.RGBA, error) {
	if mb.DrawingLayer == "" {
		return nil, nil
	}

	s := mb.Settings()
	e := draw.NewEngine(int(s.Width), int(s.Height))
	err := e.Restore(mb.DrawingLayer)
	if err != nil {
		return nil, err
	}

	return e.Buffer(), nil
}

// import ---------------------------------------------------------------------

func doImport(boardID, ref string) error {
	store, err := setupStorage()
	if err != nil {
		return err
	}

	at := pixe.Rect{X: 100, Y: 100, W: 300, H: 300}

	var img *pixe.ImageElement
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		img, err = store.ImportImage(boardID, ref, at)
	} else {
		var f *os.File
		f, err = os.Open(ref)
		if err != nil {
			return err
		}
		defer f.Close()

		name := filepath.Base(ref)
		title := strings.TrimSuffix(name, filepath.Ext(name))
		img, err = store.UploadImage(boardID, f, name, title, "", at)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%v imported %q as element %v.\n", checkmark, ref, img.ID)
	return nil
}

// common ---------------------------------------------------------------------

func setupStorage() (pixe.Storage, error) {
	base := os.Getenv("PIXE_API_URL")
	if base != "" {
		client := api.NewClient(base, os.Getenv("PIXE_TOKEN"))
		return api.NewRepository(client), nil
	}

	dir := envOr("PIXE_DATA_DIR", "./data")
	return pixe.NewFilesystemStorage(filepath.Join(dir, "boards")), nil
}

func envOr(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
