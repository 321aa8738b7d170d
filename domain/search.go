package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

// ItemMatch locates one item matched by a text search.
type ItemMatch struct {
	ListIndex int      `json:"listIndex"`
	ItemIndex int      `json:"itemIndex"`
	Item      TodoItem `json:"item"`
}

// SearchItems returns all items whose description matches text, subject to
// the same delay and failure sampling as ListAll. A blank query matches
// nothing.
func (s *Store) SearchItems(_ context.Context, text string) ([]ItemMatch, error) {
	s.stall()
	if err := s.sample(); err != nil {
		return nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	terms := strings.Fields(strings.TrimSpace(text))
	if len(terms) == 0 {
		return nil, nil
	}

	q := buildItemQuery(terms)
	req := bleve.NewSearchRequest(q)
	req.Size = len(s.searchIndex.docIDs)
	res, err := s.searchIndex.idx.Search(req)
	if err != nil {
		slog.Error("searching index", slog.Any("err", err))
		return nil, errServer("searching items failed")
	}

	var matches []ItemMatch
	for _, h := range res.Hits {
		li, ii, ok := parseDocID(h.ID)
		if !ok || li >= len(s.lists) || ii >= len(s.lists[li].Items) {
			continue
		}
		matches = append(matches, ItemMatch{
			ListIndex: li,
			ItemIndex: ii,
			Item:      s.lists[li].Items[ii],
		})
	}
	return matches, nil
}

func buildItemQuery(terms []string) blevequery.Query {
	var queries []blevequery.Query

	fullText := strings.Join(terms, " ")
	phrase := bleve.NewMatchPhraseQuery(fullText)
	phrase.SetField("Description")
	phrase.SetBoost(10.0)
	queries = append(queries, phrase)

	for _, term := range terms {
		match := bleve.NewMatchQuery(term)
		match.SetField("Description")
		queries = append(queries, match)

		if len(term) > 3 {
			fuzzy := bleve.NewFuzzyQuery(term)
			fuzzy.SetField("Description")
			fuzzy.SetFuzziness(1)
			fuzzy.SetBoost(0.5)
			queries = append(queries, fuzzy)
		}
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// searchIndex is an in-memory full-text index over item descriptions.
// Items have no identity beyond their position, so a structural mutation
// shifts document ids; state is demo-scale and a full rebuild is cheap.
type searchIndex struct {
	idx    bleve.Index
	docIDs []string // documents currently in the index
}

func newSearchIndex() searchIndex {
	doc := bleve.NewDocumentMapping()

	desc := bleve.NewTextFieldMapping()
	desc.Store = false
	desc.Analyzer = "en"
	doc.AddFieldMappingsAt("Description", desc)

	done := bleve.NewBooleanFieldMapping()
	done.Store = false
	doc.AddFieldMappingsAt("Done", done)

	m := bleve.NewIndexMapping()
	m.DefaultAnalyzer = "en"
	m.DefaultMapping = doc

	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		panic(err)
	}
	return searchIndex{idx: idx}
}

// reindexLocked rebuilds the search index from the authoritative state.
// An index failure only degrades search results, it never fails a commit.
func (s *Store) reindexLocked() {
	batch := s.searchIndex.idx.NewBatch()
	for _, id := range s.searchIndex.docIDs {
		batch.Delete(id)
	}
	s.searchIndex.docIDs = s.searchIndex.docIDs[:0]

	for li, l := range s.lists {
		for ii, item := range l.Items {
			id := docID(li, ii)
			if err := batch.Index(id, map[string]any{
				"Description": item.Description,
				"Done":        item.Done,
			}); err != nil {
				slog.Error("indexing item", slog.Any("err", err))
				continue
			}
			s.searchIndex.docIDs = append(s.searchIndex.docIDs, id)
		}
	}
	if err := s.searchIndex.idx.Batch(batch); err != nil {
		slog.Error("applying index batch", slog.Any("err", err))
	}
}

func docID(listIndex, itemIndex int) string {
	return fmt.Sprintf("%d/%d", listIndex, itemIndex)
}

func parseDocID(id string) (listIndex, itemIndex int, ok bool) {
	l, i, found := strings.Cut(id, "/")
	if !found {
		return 0, 0, false
	}
	li, err := strconv.Atoi(l)
	if err != nil || li < 0 {
		return 0, 0, false
	}
	ii, err := strconv.Atoi(i)
	if err != nil || ii < 0 {
		return 0, 0, false
	}
	return li, ii, true
}
