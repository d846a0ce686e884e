package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/bryanwahyu/automaton-analyst/internal/domain/frame"
)

// ErrNoTable is returned when the page has no <table> element.
var ErrNoTable = errors.New("no tables found on the webpage")

const (
	defaultTimeout  = 15 * time.Second
	defaultMaxBytes = 5 << 20
	maxRedirects    = 10
	userAgent       = "data-analyst-agent/1.0 (+table scraper)"
)

// ErrBlockedAddress is returned when a host resolves to a non-public address.
var ErrBlockedAddress = errors.New("address is not publicly routable")

// Client fetches HTML pages and turns their first table into a frame.
type Client struct {
	HTTP     *http.Client
	MaxBytes int64
	// Validate, when set, is called with the URL before any request is made
	// and again for every redirect target.
	Validate func(rawURL string) error
}

// New builds a Client. When validate is non-nil the transport also refuses to
// dial loopback, private, link-local or unspecified addresses after DNS lookup.
func New(timeout time.Duration, validate func(string) error) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if validate != nil {
				return validate(req.URL.String())
			}
			return nil
		},
	}
	if validate != nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.Proxy = nil
		tr.DialContext = (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
			Control:   publicOnly,
		}).DialContext
		hc.Transport = tr
	}
	return &Client{
		HTTP:     hc,
		MaxBytes: defaultMaxBytes,
		Validate: validate,
	}
}

// publicOnly runs on the resolved address right before connect.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsInterfaceLocalMulticast() {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	return nil
}

// FirstTable downloads rawURL and parses its first table.
func (c *Client) FirstTable(ctx context.Context, rawURL string) (*frame.Frame, error) {
	if c.Validate != nil {
		if err := c.Validate(rawURL); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	limit := c.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	return ParseFirstTable(io.LimitReader(resp.Body, limit))
}

// ParseFirstTable parses an HTML document and returns its first table.
// The header comes from the first row when it is made of <th> cells,
// otherwise columns are named col_1, col_2, ...
func ParseFirstTable(r io.Reader) (*frame.Frame, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	table := find(doc, atom.Table)
	if table == nil {
		return nil, ErrNoTable
	}

	var rows [][]string
	var headerRow bool
	for i, tr := range rowsOf(table) {
		cells, allTH := cellsOf(tr)
		if len(cells) == 0 {
			continue
		}
		if i == 0 || len(rows) == 0 {
			headerRow = allTH
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return frame.FromStrings(nil, nil), nil
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	var header []string
	if headerRow {
		header, rows = rows[0], rows[1:]
		for len(header) < width {
			header = append(header, "")
		}
	} else {
		header = make([]string, width)
		for i := range header {
			header[i] = fmt.Sprintf("col_%d", i+1)
		}
	}
	return frame.FromStrings(header, rows), nil
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}

// rowsOf collects the <tr> elements of t, skipping nested tables.
func rowsOf(t *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				out = append(out, c)
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walk(c)
			}
		}
	}
	walk(t)
	return out
}

func cellsOf(tr *html.Node) ([]string, bool) {
	var cells []string
	allTH := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		if c.DataAtom == atom.Td {
			allTH = false
		}
		cells = append(cells, text(c))
	}
	return cells, allTH && len(cells) > 0
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		if n.Type == html.ElementNode && (n.DataAtom == atom.Sup || n.DataAtom == atom.Style || n.DataAtom == atom.Script) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
