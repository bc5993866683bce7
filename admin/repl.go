package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/camden-git/photogallery/media"
)

// Console is the interactive admin: it plays the part of the upload and
// edit forms and of the delete confirmation, and reports each outcome.
type Console struct {
	Session  *Session
	Reader   *bufio.Reader
	Out      io.Writer
	OpenFile func(path string) (io.ReadCloser, error)
}

func NewConsole(session *Session, in io.Reader, out io.Writer) *Console {
	return &Console{
		Session: session,
		Reader:  bufio.NewReader(in),
		Out:     out,
		OpenFile: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// println writes a line of user-facing output to Out.
func (c *Console) println(a ...any) {
	fmt.Fprintln(c.Out, a...)
}

// Run reads commands until EOF or "exit". Command failures are reported to
// the user and never end the loop.
//
//	help           show available commands
//	list | l       show the photo table
//	reload         fetch the list from the server
//	upload         upload a new photo
//	edit           change a photo's title
//	delete         delete a photo
//	exit | quit    leave the console
func (c *Console) Run(ctx context.Context) {
	for {
		fmt.Fprintf(c.Out, "gallery admin (%d photos) > ", len(c.Session.Photos()))
		line, err := c.Reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			c.println("Available commands: (l)ist, reload, upload, edit, delete, exit")
		case "l", "list":
			c.list()
		case "reload":
			c.reload(ctx)
		case "upload":
			c.upload(ctx)
		case "edit":
			c.edit(ctx)
		case "delete":
			c.delete(ctx)
		case "exit", "quit":
			c.println("Bye!")
			return
		default:
			c.println("Unknown command:", parts[0])
		}
	}
}

func (c *Console) list() {
	photos := c.Session.Photos()
	if len(photos) == 0 {
		c.println("No photos found.")
		return
	}

	tw := tabwriter.NewWriter(c.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDATE TAKEN\tFEATURED")
	for _, p := range photos {
		title := p.Title
		if title == "" {
			title = "Untitled"
		}
		taken := "N/A"
		if p.DateTaken != nil {
			taken = p.DateTaken.Format("Jan 2, 2006")
		}
		featured := "no"
		if p.Featured {
			featured = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, title, taken, featured)
	}
	tw.Flush()
}

func (c *Console) reload(ctx context.Context) {
	if err := c.Session.Reload(ctx); err != nil {
		c.println("Failed to load photos:", err)
		return
	}
	c.println(fmt.Sprintf("Loaded %d photos.", len(c.Session.Photos())))
}

func (c *Console) upload(ctx context.Context) {
	title, err := GetSimpleText(c.Reader, "Title", c.Out)
	if err != nil {
		return
	}
	path, err := GetSimpleText(c.Reader, "Path to image file", c.Out)
	if err != nil {
		return
	}
	if title == "" || path == "" {
		c.println("Title and image file are required")
		return
	}
	if !media.IsRasterImage(path) {
		c.println("Not an image file:", path)
		return
	}

	f, err := c.OpenFile(path)
	if err != nil {
		c.println("Cannot open image:", err)
		return
	}
	defer f.Close()

	created, err := c.Session.Upload(ctx, title, path, f)
	if err != nil {
		c.println("Upload failed:", err)
		return
	}
	c.println(fmt.Sprintf("Uploaded %q as %s (slug %s).", created.Title, created.ID, created.Slug.Current))
}

func (c *Console) edit(ctx context.Context) {
	id, err := GetSimpleText(c.Reader, "Enter photo id to edit", c.Out)
	if err != nil {
		return
	}
	current, ok := c.Session.Find(id)
	if !ok {
		c.println("No photo with id", id)
		return
	}

	title, err := GetSimpleText(c.Reader, fmt.Sprintf("New title (current: %q)", current.Title), c.Out)
	if err != nil {
		return
	}
	if title == "" {
		c.println("Title is required")
		return
	}

	updated, err := c.Session.Rename(ctx, id, title)
	if err != nil {
		c.println("Update failed:", err)
		return
	}
	c.println(fmt.Sprintf("Renamed %s to %q.", updated.ID, updated.Title))
}

func (c *Console) delete(ctx context.Context) {
	id, err := GetSimpleText(c.Reader, "Enter photo id to delete", c.Out)
	if err != nil {
		return
	}
	if id == "" {
		c.println("Photo id is required")
		return
	}

	err = c.Session.Delete(ctx, id, func(prompt string) (bool, error) {
		return GetConfirmation(c.Reader, prompt, c.Out)
	})
	switch {
	case errors.Is(err, ErrUserAbort):
		c.println("Cancelled.")
	case err != nil:
		c.println("Delete failed:", err)
	default:
		c.println("Photo deleted successfully")
	}
}
