package spacetraveling

import (
	"errors"
	"testing"
)

func TestNewStore(t *testing.T) {
	s := newTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestSaveAndGetPost(t *testing.T) {
	s := newTestStore(t)
	post := testPost(t, "como-utilizar-hooks", "Como utilizar Hooks", "2021-03-15T19:25:28Z")

	if err := s.SavePosts(post); err != nil {
		t.Fatalf("SavePosts failed: %v", err)
	}

	got, err := s.GetPost("como-utilizar-hooks")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != post.Title || got.Author != post.Author || got.ID != post.ID {
		t.Fatalf("got %+v, want %+v", got, post)
	}
	if got.FirstPublicationDate == nil || !got.FirstPublicationDate.Equal(*post.FirstPublicationDate) {
		t.Fatalf("first publication date = %v, want %v", got.FirstPublicationDate, post.FirstPublicationDate)
	}
	if got.LastPublicationDate != nil {
		t.Fatalf("expected nil last publication date, got %v", got.LastPublicationDate)
	}
	if len(got.Content) != 1 || got.Content[0].Heading != "Proin et varius" {
		t.Fatalf("content not restored: %+v", got.Content)
	}
	body := got.Content[0].Body
	if len(body) != 1 || len(body[0].Spans) != 1 || body[0].Spans[0].End != 5 {
		t.Fatalf("spans not restored: %+v", body)
	}
}

func TestSavePostsReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	post := testPost(t, "hooks", "Old title", "2021-03-15T19:25:28Z")
	if err := s.SavePosts(post); err != nil {
		t.Fatalf("SavePosts failed: %v", err)
	}
	post.Title = "New title"
	if err := s.SavePosts(post); err != nil {
		t.Fatalf("SavePosts failed: %v", err)
	}
	posts, err := s.ListPosts()
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "New title" {
		t.Fatalf("expected one replaced post, got %+v", posts)
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetPost("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPostsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	posts := threePosts(t)
	// Save out of order.
	if err := s.SavePosts(posts[2], posts[0], posts[1]); err != nil {
		t.Fatalf("SavePosts failed: %v", err)
	}
	got, err := s.ListPosts()
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(got))
	}
	for i := range posts {
		if got[i].UID != posts[i].UID {
			t.Fatalf("position %d: got %q, want %q", i, got[i].UID, posts[i].UID)
		}
	}
}

func TestDeletePost(t *testing.T) {
	s := newTestStore(t)
	if err := s.SavePosts(threePosts(t)...); err != nil {
		t.Fatalf("SavePosts failed: %v", err)
	}
	if err := s.DeletePost("primeiro-post"); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := s.GetPost("primeiro-post"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted post to be gone, got %v", err)
	}
	posts, _ := s.ListPosts()
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts left, got %d", len(posts))
	}
}
