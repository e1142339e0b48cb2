package editor

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"path"
	"scrapbook/db"
	"scrapbook/layout"
	"scrapbook/models"
	"scrapbook/storage"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

var (
	ErrSessionNotFound  = errors.New("edit session not found")
	ErrPageNotFound     = errors.New("page does not exist")
	ErrLastPage         = errors.New("an album needs at least one page")
	ErrElementNotFound  = errors.New("element not found on this page")
	ErrInvalidTransform = errors.New("offsets and scale must be fractions between 0 and 1")
	ErrInvalidResource  = errors.New("invalid element resource")
	ErrNotImage         = errors.New("element is not an image")
)

// Session holds the pages of one album while a user edits them. Nothing is written to the
// database before Save.
type Session struct {
	mu          sync.Mutex
	token       string
	userID      uint64
	albumID     uint64
	pageCount   int
	currentPage int
	landscape   bool
	changed     bool
	pages       map[int][]Element
	deleted     map[uint64]bool
	staged      map[int64]string // element ID -> staging path
	originals   map[int64]string // stored pictures of image elements as of the last save
	nextID      int64
	uploads     int
	touched     time.Time
	closed      bool
	storage     storage.StorageAPI
}

// Open loads the album of userID into a new session
func Open(token string, userID, albumID uint64, store storage.StorageAPI) (*Session, error) {
	album, err := models.AlbumLoad(userID, albumID)
	if err != nil {
		return nil, err
	}
	elements, err := models.AlbumElements(albumID)
	if err != nil {
		return nil, err
	}
	s := &Session{
		token:       token,
		userID:      userID,
		albumID:     albumID,
		pageCount:   max(album.PageCount, 1),
		currentPage: 1,
		landscape:   album.Landscape,
		pages:       make(map[int][]Element),
		deleted:     make(map[uint64]bool),
		staged:      make(map[int64]string),
		originals:   make(map[int64]string),
		nextID:      -1,
		touched:     time.Now(),
		storage:     store,
	}
	for i := range elements {
		page := max(elements[i].PageNumber, 1)
		s.pages[page] = append(s.pages[page], fromModel(&elements[i]))
		s.pageCount = max(s.pageCount, page)
	}
	s.rememberOriginals()
	return s, nil
}

func (s *Session) Token() string {
	return s.token
}

func (s *Session) AlbumID() uint64 {
	return s.albumID
}

func (s *Session) touch() {
	s.touched = time.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.state()
}

func (s *Session) state() State {
	pages := make(map[int][]Element, s.pageCount)
	for page := 1; page <= s.pageCount; page++ {
		pages[page] = append([]Element{}, s.pages[page]...)
	}
	return State{
		Token:       s.token,
		AlbumID:     s.albumID,
		PageCount:   s.pageCount,
		CurrentPage: s.currentPage,
		Landscape:   s.landscape,
		Changed:     s.changed,
		Pages:       pages,
	}
}

// AddPage appends an empty page and returns the new page count
func (s *Session) AddPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.pageCount++
	s.changed = true
	return s.pageCount
}

func (s *Session) SetCurrentPage(page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if page < 1 || page > s.pageCount {
		return ErrPageNotFound
	}
	s.currentPage = page
	return nil
}

// DeletePage removes a page with all its elements. Following pages move one position up.
func (s *Session) DeletePage(page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if page < 1 || page > s.pageCount {
		return ErrPageNotFound
	}
	if s.pageCount == 1 {
		return ErrLastPage
	}
	for i := range s.pages[page] {
		s.forget(&s.pages[page][i])
	}
	pages := make(map[int][]Element, len(s.pages))
	for p, elements := range s.pages {
		switch {
		case p < page:
			pages[p] = elements
		case p > page:
			pages[p-1] = elements
		}
	}
	s.pages = pages
	s.pageCount--
	if s.currentPage > page || s.currentPage > s.pageCount {
		s.currentPage = max(s.currentPage-1, 1)
	}
	s.changed = true
	return nil
}

// forget drops everything the session knows about a removed element
func (s *Session) forget(e *Element) {
	if staged, ok := s.staged[e.ID]; ok {
		s.deleteFile(staged)
		delete(s.staged, e.ID)
	}
	if !e.IsNew() {
		s.deleted[uint64(e.ID)] = true
	}
}

func (s *Session) find(page int, id int64) (int, error) {
	if page < 1 || page > s.pageCount {
		return -1, ErrPageNotFound
	}
	for i := range s.pages[page] {
		if s.pages[page][i].ID == id {
			return i, nil
		}
	}
	return -1, ErrElementNotFound
}

func (s *Session) checkElement(e *Element) error {
	e.Type = models.ParseElementType(string(e.Type))
	if !layout.Valid(e.Transform) {
		return ErrInvalidTransform
	}
	e.Rotation = layout.NormalizeRotation(e.Rotation)
	if e.Type == models.ElementText {
		if _, err := layout.DecodeText(e.Resource); err != nil {
			return err
		}
	}
	return nil
}

// AddElement puts a new element on the page. Image elements start empty and get their
// picture from StageImage. A zero z-index places the element on top.
func (s *Session) AddElement(page int, e Element) (Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if page < 1 || page > s.pageCount {
		return Element{}, ErrPageNotFound
	}
	if err := s.checkElement(&e); err != nil {
		return Element{}, err
	}
	if e.Type == models.ElementImage {
		e.Resource = ""
	}
	if e.ZIndex == 0 {
		e.ZIndex = s.topZIndex(page) + 1
	}
	e.ID = s.nextID
	s.nextID--
	s.pages[page] = append(s.pages[page], e)
	s.changed = true
	return e, nil
}

func (s *Session) topZIndex(page int) int {
	top := 0
	for _, e := range s.pages[page] {
		top = max(top, e.ZIndex)
	}
	return top
}

// UpdateElement replaces the element with the same ID. The picture of an image element can
// only be changed with StageImage.
func (s *Session) UpdateElement(page int, e Element) (Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	i, err := s.find(page, e.ID)
	if err != nil {
		return Element{}, err
	}
	if err := s.checkElement(&e); err != nil {
		return Element{}, err
	}
	current := &s.pages[page][i]
	if e.Type == models.ElementImage || current.Type == models.ElementImage {
		if e.Type != current.Type {
			return Element{}, ErrInvalidResource
		}
		e.Resource = current.Resource
	}
	*current = e
	s.changed = true
	return e, nil
}

// Transform applies a gesture. The result is stored normalised and the edge tells the client
// whether the element was dragged close to or onto the page border.
func (s *Session) Transform(page int, id int64, g Gesture) (Element, layout.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	i, err := s.find(page, id)
	if err != nil {
		return Element{}, layout.EdgeInside, err
	}
	if g.Page.IsZero() || !(g.Size > 0) || !finite(g.Position.X, g.Position.Y, g.Rotation) {
		return Element{}, layout.EdgeInside, ErrInvalidTransform
	}
	e := &s.pages[page][i]
	t := layout.ToNormalized(layout.Placement{
		X:        g.Position.X,
		Y:        g.Position.Y,
		Size:     g.Size,
		Rotation: layout.NormalizeRotation(g.Rotation),
	}, g.Page)
	// Offsets may leave the page while dragging, the element itself can't outgrow it
	t.Scale = min(t.Scale, 1)
	element := g.Element
	if element.IsZero() {
		element = layout.Size{Width: g.Size, Height: g.Size}
	}
	e.Transform = t
	s.changed = true
	return *e, layout.DetectEdge(g.Position, element, g.Page), nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s *Session) DeleteElement(page int, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	i, err := s.find(page, id)
	if err != nil {
		return err
	}
	s.forget(&s.pages[page][i])
	s.pages[page] = append(s.pages[page][:i], s.pages[page][i+1:]...)
	s.changed = true
	return nil
}

// CancelDelete brings an element that was dragged onto the border back inside the page
func (s *Session) CancelDelete(page int, id int64, pageSize, elementSize layout.Size) (Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	i, err := s.find(page, id)
	if err != nil {
		return Element{}, err
	}
	e := &s.pages[page][i]
	e.Transform = layout.Clamp(e.Transform, pageSize, elementSize)
	s.changed = true
	return *e, nil
}

// ToggleOrientation switches between portrait and landscape pages
func (s *Session) ToggleOrientation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	for _, elements := range s.pages {
		for i := range elements {
			elements[i].Transform = layout.SwapAxes(elements[i].Transform)
		}
	}
	s.landscape = !s.landscape
	s.changed = true
	return s.landscape
}

// StageImage stores a picture for an image element. It is moved next to the other album
// files when the session is saved.
func (s *Session) StageImage(page int, id int64, reader io.Reader, ext string) (Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.closed {
		return Element{}, ErrSessionNotFound
	}
	i, err := s.find(page, id)
	if err != nil {
		return Element{}, err
	}
	e := &s.pages[page][i]
	if e.Type != models.ElementImage {
		return Element{}, ErrNotImage
	}
	s.uploads++
	staged := storage.StagingPath(s.token, s.uploads, ext)
	if err := storage.SaveImage(s.storage, staged, reader); err != nil {
		return Element{}, err
	}
	if previous, ok := s.staged[id]; ok {
		s.deleteFile(previous)
	}
	s.staged[id] = staged
	e.Resource = staged
	s.changed = true
	return *e, nil
}

// Save writes the session to the database in a single transaction and returns the database
// IDs given to new elements, keyed by their temporary IDs.
func (s *Session) Save(ctx context.Context) (map[int64]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.closed {
		return nil, ErrSessionNotFound
	}

	type ref struct {
		page  int
		index int
	}
	var rows []models.PageElement
	var refs []ref
	for _, page := range s.sortedPages() {
		for i := range s.pages[page] {
			rows = append(rows, s.pages[page][i].toModel(s.albumID, page))
			refs = append(refs, ref{page, i})
		}
	}
	deleted := make([]uint64, 0, len(s.deleted))
	for id := range s.deleted {
		deleted = append(deleted, id)
	}
	err := db.Instance.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := models.AlbumSetLayout(tx, s.albumID, s.landscape, s.pageCount); err != nil {
			return err
		}
		if err := models.ElementsUpsert(tx, rows); err != nil {
			return err
		}
		return models.ElementsDelete(tx, s.albumID, deleted)
	})
	if err != nil {
		return nil, err
	}

	ids := map[int64]uint64{}
	staged := map[int64]string{}
	for n, r := range refs {
		e := &s.pages[r.page][r.index]
		if e.IsNew() {
			ids[e.ID] = rows[n].ID
		}
		if path, ok := s.staged[e.ID]; ok {
			staged[int64(rows[n].ID)] = path
		} else if e.Type == models.ElementImage && storage.IsStagingPath(e.Resource) {
			// Promotion failed on an earlier save
			staged[int64(rows[n].ID)] = e.Resource
		}
		e.ID = int64(rows[n].ID)
	}
	s.promote(staged)
	s.removeReplaced()
	s.deleted = make(map[uint64]bool)
	s.staged = make(map[int64]string)
	s.changed = false
	return ids, nil
}

// promote moves staged uploads to their final place. Failures are logged and the element
// keeps pointing to the staged copy.
func (s *Session) promote(staged map[int64]string) {
	for id, from := range staged {
		to := storage.ElementImagePath(s.albumID, uint64(id), path.Ext(from))
		if err := storage.Move(s.storage, from, to); err != nil {
			log.Printf("Editor %s: %v", s.token, err)
			continue
		}
		if err := models.ElementSetResource(db.Instance, s.albumID, uint64(id), to); err != nil {
			log.Printf("Editor %s: cannot update element %d: %v", s.token, id, err)
			continue
		}
		s.setResource(id, to)
	}
}

// removeReplaced deletes stored pictures that no element uses anymore
func (s *Session) removeReplaced() {
	current := map[string]bool{}
	for _, elements := range s.pages {
		for _, e := range elements {
			current[e.Resource] = true
		}
	}
	for _, path := range s.originals {
		if current[path] {
			continue
		}
		// Promoted uploads were already moved away
		if storage.IsStagingPath(path) && !s.storage.Exists(path) {
			continue
		}
		s.deleteFile(path)
	}
	s.rememberOriginals()
}

func (s *Session) rememberOriginals() {
	s.originals = make(map[int64]string)
	for _, elements := range s.pages {
		for _, e := range elements {
			if e.Type == models.ElementImage && (storage.BelongsToAlbum(e.Resource, s.albumID) || storage.IsStagingPath(e.Resource)) {
				s.originals[e.ID] = e.Resource
			}
		}
	}
}

func (s *Session) setResource(id int64, resource string) {
	for _, elements := range s.pages {
		for i := range elements {
			if elements[i].ID == id {
				elements[i].Resource = resource
				return
			}
		}
	}
}

func (s *Session) sortedPages() []int {
	pages := make([]int, 0, len(s.pages))
	for page := range s.pages {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}

func (s *Session) deleteFile(path string) {
	if err := s.storage.Delete(path); err != nil {
		log.Printf("Editor %s: cannot delete %s: %v", s.token, path, err)
	}
}

// discard removes uploads that were never saved. The session can't stage or save afterwards,
// a request may still hold it after the registry dropped it.
func (s *Session) discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, path := range s.staged {
		s.deleteFile(path)
	}
	s.staged = make(map[int64]string)
}
