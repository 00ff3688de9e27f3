package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/hookah/internal/adapters/catalog"
	"github.com/okian/hookah/internal/adapters/repository"
	service "github.com/okian/hookah/internal/app"
	"github.com/okian/hookah/internal/domain/attributes"
	"github.com/okian/hookah/internal/domain/model"
	types "github.com/okian/hookah/internal/domain/types"
	"github.com/okian/hookah/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fixture struct {
	svc     *service.Service
	flavors *repository.FlavorStore
	mixes   *repository.MixStore
	catalog *catalog.Catalog
}

func newFixture(t *testing.T, opts ...service.Option) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		flavors: repository.NewFlavorStore(filepath.Join(dir, "flavors.json")),
		mixes:   repository.NewMixStore(filepath.Join(dir, "guest_mixes.json")),
		catalog: catalog.New(nil),
	}
	ctx := context.Background()
	for _, fl := range []model.Flavor{
		{Brand: "Darkside", Name: "Supernova", Tags: model.Tags{"ice"}},
		{Brand: "Bonch", Name: "Cherry", Tags: model.Tags{"sweet"}},
		{Brand: "Starline", Name: "Lime Drop"},
	} {
		if _, err := f.flavors.Create(ctx, fl); err != nil {
			t.Fatalf("seed flavor: %v", err)
		}
	}

	seq := 0
	base := []service.Option{
		service.WithClock(func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }),
		service.WithIDGenerator(func() string { seq++; return fmt.Sprintf("mix-%d", seq) }),
	}
	f.svc = service.New(f.flavors, f.mixes, f.catalog, append(base, opts...)...)
	if err := f.svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	return f
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		f := newFixture(t)

		Convey("The catalog is loaded from the store", func() {
			So(f.catalog.Len(), ShouldEqual, 3)
			So(f.svc.Brands(context.Background()), ShouldResemble, []string{"Bonch", "Darkside", "Starline"})
		})

		Convey("Stats report the service state", func() {
			stats := f.svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["flavors"], ShouldEqual, 3)
			So(stats["mixes"], ShouldEqual, 0)
		})

		Convey("Starting twice is a no-op", func() {
			So(f.svc.Start(context.Background()), ShouldBeNil)
		})

		Convey("When stopped", func() {
			f.svc.Stop()
			So(f.svc.GetStats()["started"], ShouldEqual, false)
			f.svc.Stop()
		})
	})
}

func TestService_CreateMix(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service", t, func() {
		f := newFixture(t, service.WithBannedWords([]string{"casino"}))

		Convey("A valid mix is stored with derived attributes", func() {
			mix, err := f.svc.CreateMix(ctx, types.MixInput{
				Title: "  Cherry Ice ",
				Notes: " cold ",
				Parts: model.Parts{
					{FlavorID: "bonch-cherry", Percent: 50},
					{FlavorID: "darkside-supernova", Percent: 50},
				},
			})
			So(err, ShouldBeNil)
			So(mix.ID, ShouldEqual, "mix-1")
			So(mix.Title, ShouldEqual, "Cherry Ice")
			So(mix.Notes, ShouldEqual, "cold")
			So(mix.Author, ShouldEqual, service.DefaultAuthor)
			So(mix.CreatedAt, ShouldEqual, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
			So(*mix.Strength10, ShouldEqual, 6.0)
			So(*mix.Taste, ShouldEqual, attributes.TasteSweet)
			So(mix.Likers, ShouldBeEmpty)

			list, err := f.svc.ListMixes(ctx)
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 1)
			So(list[0].ID, ShouldEqual, "mix-1")
		})

		Convey("Mixes with unknown flavors get null attributes", func() {
			mix, err := f.svc.CreateMix(ctx, types.MixInput{
				Title: "Mystery",
				Parts: model.Parts{{FlavorID: "ghost", Percent: 100}},
			})
			So(err, ShouldBeNil)
			So(mix.Strength10, ShouldBeNil)
			So(mix.Taste, ShouldBeNil)
		})

		Convey("Invalid mixes are rejected", func() {
			_, err := f.svc.CreateMix(ctx, types.MixInput{
				Title: "Half",
				Parts: model.Parts{{FlavorID: "bonch-cherry", Percent: 50}},
			})
			So(errors.Is(err, types.ErrInvalidMix), ShouldBeTrue)

			_, err = f.svc.CreateMix(ctx, types.MixInput{
				Title: "ab",
				Parts: model.Parts{{FlavorID: "bonch-cherry", Percent: 100}},
			})
			So(errors.Is(err, types.ErrInvalidMix), ShouldBeTrue)

			_, err = f.svc.CreateMix(ctx, types.MixInput{Title: "Empty"})
			So(errors.Is(err, types.ErrInvalidMix), ShouldBeTrue)
		})

		Convey("Repeated flavors keep only their first part", func() {
			_, err := f.svc.CreateMix(ctx, types.MixInput{
				Title: "Twice",
				Parts: model.Parts{
					{FlavorID: "bonch-cherry", Percent: 50},
					{FlavorID: " bonch-cherry ", Percent: 50},
				},
			})
			So(errors.Is(err, types.ErrInvalidMix), ShouldBeTrue)

			mix, err := f.svc.CreateMix(ctx, types.MixInput{
				Title: "Once",
				Parts: model.Parts{
					{FlavorID: "bonch-cherry", Percent: 60},
					{FlavorID: "starline-lime-drop", Percent: 40},
					{FlavorID: "bonch-cherry", Percent: 10},
				},
			})
			So(err, ShouldBeNil)
			So(mix.Parts, ShouldResemble, model.Parts{
				{FlavorID: "bonch-cherry", Percent: 60},
				{FlavorID: "starline-lime-drop", Percent: 40},
			})
		})

		Convey("Banned words are rejected", func() {
			_, err := f.svc.CreateMix(ctx, types.MixInput{
				Title: "Casino night",
				Parts: model.Parts{{FlavorID: "bonch-cherry", Percent: 100}},
			})
			So(errors.Is(err, types.ErrRejected), ShouldBeTrue)
		})
	})

	Convey("Given a service that normalizes submissions", t, func() {
		f := newFixture(t, service.WithNormalizeOnSubmit(true))

		Convey("Shares are rescaled to 100", func() {
			mix, err := f.svc.CreateMix(ctx, types.MixInput{
				Title: "Scaled",
				Parts: model.Parts{
					{FlavorID: "bonch-cherry", Percent: 30},
					{FlavorID: "starline-lime-drop", Percent: 30},
				},
			})
			So(err, ShouldBeNil)
			So(mix.Parts[0].Percent, ShouldEqual, 50)
			So(mix.Parts[1].Percent, ShouldEqual, 50)
		})
	})
}

func TestService_MixesAndLikes(t *testing.T) {
	ctx := context.Background()

	Convey("Given a stored mix", t, func() {
		f := newFixture(t)
		mix, err := f.svc.CreateMix(ctx, types.MixInput{
			Title: "Cherry",
			Parts: model.Parts{{FlavorID: "bonch-cherry", Percent: 100}},
		})
		So(err, ShouldBeNil)

		Convey("Likes default the user to anon", func() {
			res, err := f.svc.LikeMix(ctx, mix.ID, " ")
			So(err, ShouldBeNil)
			So(res, ShouldResemble, types.LikeResult{Liked: true, Likes: 1, Found: true})

			res, err = f.svc.UnlikeMix(ctx, mix.ID, "")
			So(err, ShouldBeNil)
			So(res, ShouldResemble, types.LikeResult{Liked: false, Likes: 0, Found: true})
		})

		Convey("Liking an unknown mix is not found", func() {
			res, err := f.svc.LikeMix(ctx, "ghost", "u1")
			So(err, ShouldBeNil)
			So(res.Found, ShouldBeFalse)
		})

		Convey("Delete reports existence", func() {
			ok, err := f.svc.DeleteMix(ctx, mix.ID)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			ok, err = f.svc.DeleteMix(ctx, mix.ID)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestService_Flavors(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service", t, func() {
		f := newFixture(t)

		Convey("Creating a flavor refreshes the catalog", func() {
			fl, err := f.svc.CreateFlavor(ctx, model.Flavor{Brand: "MustHave", Name: "Pinkman"})
			So(err, ShouldBeNil)
			So(fl.ID, ShouldEqual, "musthave-pinkman")
			_, ok := f.catalog.Lookup("musthave-pinkman")
			So(ok, ShouldBeTrue)

			_, err = f.svc.CreateFlavor(ctx, model.Flavor{Brand: "MustHave", Name: "Pinkman"})
			So(errors.Is(err, repository.ErrExists), ShouldBeTrue)
		})

		Convey("Updating a flavor changes derivation", func() {
			v := 9.0
			_, err := f.svc.UpdateFlavor(ctx, "bonch-cherry", repository.FlavorPatch{Strength10: &v})
			So(err, ShouldBeNil)
			fl, _ := f.catalog.Lookup("bonch-cherry")
			So(*fl.Strength10, ShouldEqual, 9)

			_, err = f.svc.UpdateFlavor(ctx, "ghost", repository.FlavorPatch{})
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Deleting a flavor removes it from the catalog", func() {
			So(f.svc.DeleteFlavor(ctx, "bonch-cherry"), ShouldBeNil)
			_, ok := f.catalog.Lookup("bonch-cherry")
			So(ok, ShouldBeFalse)
			So(errors.Is(f.svc.DeleteFlavor(ctx, "bonch-cherry"), repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Search goes through the store", func() {
			list, err := f.svc.ListFlavors(ctx, "ice")
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 1)
			So(list[0].ID, ShouldEqual, "darkside-supernova")
		})

		Convey("Importing without replace skips existing ids", func() {
			n, err := f.svc.ImportFlavors(ctx, []model.Flavor{
				{Brand: "Bonch", Name: "Cherry"},
				{Brand: "Overdos", Name: "Lime"},
			}, false)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)
			So(f.catalog.Len(), ShouldEqual, 4)
		})

		Convey("Seeding is skipped when the store has flavors", func() {
			n, err := f.svc.SeedIfEmpty(ctx, "/does/not/matter.json")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
		})
	})

	Convey("Given an empty store and a seed file", t, func() {
		dir := t.TempDir()
		seed := filepath.Join(dir, "seed.yaml")
		So(os.WriteFile(seed, []byte("- brand: Bonch\n  name: Cherry\n- brand: Starline\n  name: Melon\n"), 0o600), ShouldBeNil)

		cat := catalog.New(nil)
		svc := service.New(
			repository.NewFlavorStore(filepath.Join(dir, "flavors.json")),
			repository.NewMixStore(filepath.Join(dir, "guest_mixes.json")),
			cat,
		)

		Convey("The seed is imported", func() {
			n, err := svc.SeedIfEmpty(ctx, seed)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
			So(cat.Len(), ShouldEqual, 2)
		})

		Convey("A broken seed is reported", func() {
			_, err := svc.SeedIfEmpty(ctx, filepath.Join(dir, "none.json"))
			So(errors.Is(err, service.ErrSeedCatalog), ShouldBeTrue)
		})
	})
}

func TestService_Builder(t *testing.T) {
	Convey("Given a service", t, func() {
		f := newFixture(t)

		Convey("Adding parts fills up to 100", func() {
			d := model.Draft{Title: "Test"}
			for _, id := range []string{"bonch-cherry", "darkside-supernova", "starline-lime-drop", "x"} {
				d.Parts = f.svc.AddPart(d, id).Parts
			}
			So(len(d.Parts), ShouldEqual, 4)
			So(d.Parts[3].Percent, ShouldEqual, 10)

			res := f.svc.AddPart(d, "y")
			So(res.Parts[4].Percent, ShouldEqual, 0)
			So(res.Preview.Sum, ShouldEqual, 100)
			So(res.Preview.Remaining, ShouldEqual, 0)
			So(res.Preview.Valid, ShouldBeTrue)
		})

		Convey("Updating clamps to the headroom", func() {
			d := model.Draft{Title: "Test", Parts: model.Parts{
				{FlavorID: "bonch-cherry", Percent: 70},
				{FlavorID: "darkside-supernova", Percent: 20},
			}}
			res := f.svc.UpdatePercent(d, "darkside-supernova", 90)
			So(res.Parts[1].Percent, ShouldEqual, 30)
			So(res.Preview.Valid, ShouldBeTrue)
			So(res.Preview.Band, ShouldEqual, attributes.BandMedium)
			So(d.Parts[1].Percent, ShouldEqual, 20)
		})

		Convey("Removing the last part leaves an empty draft", func() {
			d := model.Draft{Parts: model.Parts{{FlavorID: "bonch-cherry", Percent: 30}}}
			res := f.svc.RemovePart(d, "bonch-cherry")
			So(res.Parts, ShouldNotBeNil)
			So(res.Parts, ShouldBeEmpty)
			So(res.Preview.Strength10, ShouldBeNil)
			So(res.Preview.Band, ShouldEqual, attributes.BandUnknown)
			So(res.Preview.Valid, ShouldBeFalse)
		})
	})
}
