package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"strings"

	"github.com/jaswdr/faker"
	"github.com/samber/lo"

	. "picfeed/pkg/common"
	"picfeed/pkg/feed"
	"picfeed/pkg/logger"
	"picfeed/pkg/post"
	"picfeed/pkg/user"
)

var f = faker.New()

type IUserRepo interface {
	Add(context.Context, *user.User) (string, error)
	GetAll(context.Context) ([]*user.User, error)
}

// seed creates a few users with the same password and lets them post, like,
// bookmark and comment through the regular write path.
func seed(ctx context.Context, userRepo IUserRepo, store feed.Store, bucket feed.Bucket) {
	l := logger.Log(ctx)
	onePassForAll := HashPass("sdfsdfsdf", RandStringRunes(SaltLen))

	authors, err := userRepo.GetAll(ctx)
	if err != nil {
		l.Fatalf("seed: can't get all authors: %v", err)
	}
	if len(authors) == 0 {
		for _, name := range append([]string{"pike"}, fakeNames(5)...) {
			u := &user.User{
				Username:  name,
				Password:  onePassForAll,
				AvatarURL: f.Internet().URL(),
			}
			if u.Id, err = userRepo.Add(ctx, u); err != nil {
				l.Fatalf("seed: can't add user %s: %v", name, err)
			}
			authors = append(authors, u)
		}
	}

	m := feed.NewMutator(store, bucket, nil, 0)
	var posts []post.PostId
	for i := 0; i < 6; i++ {
		author := authors[rand.Intn(len(authors))]
		id, err := m.CreatePost(ctx, author.Id, genCaption(), feed.Image{Name: "seed.png", Data: genImage()})
		if err != nil {
			l.Fatalf("seed: can't add post: %v", err)
		}
		posts = append(posts, id)
	}

	for _, u := range authors {
		for _, id := range lo.Samples(posts, rand.Intn(3)) {
			if _, err := m.ToggleLike(ctx, id, u.Id); err != nil {
				l.Fatalf("seed: can't like post %s: %v", id, err)
			}
		}
		for _, id := range lo.Samples(posts, rand.Intn(2)) {
			if _, err := m.ToggleBookmark(ctx, id, u.Id); err != nil {
				l.Fatalf("seed: can't bookmark post %s: %v", id, err)
			}
			if _, err := m.AddComment(ctx, id, u.Id, f.Lorem().Sentence(rand.Intn(8)+3)); err != nil {
				l.Fatalf("seed: can't comment post %s: %v", id, err)
			}
		}
	}
	l.Infof("seed: %d users, %d posts", len(authors), len(posts))
}

func fakeNames(n int) []string {
	names := lo.Times(n, func(_ int) string {
		return strings.ToLower(f.Person().FirstName())
	})
	return lo.Uniq(names)
}

func genCaption() string {
	if rand.Intn(4) == 0 {
		return ""
	}
	return strings.Join(f.Lorem().Words(rand.Intn(5)+3), " ")
}

// genImage draws a flat 64x64 PNG in a random color.
func genImage() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	c := color.RGBA{R: uint8(rand.Intn(256)), G: uint8(rand.Intn(256)), B: uint8(rand.Intn(256)), A: 255}
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
