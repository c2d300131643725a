package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/brizzai/image-feed/internal/auth"
	"github.com/brizzai/image-feed/internal/feed"
	"github.com/brizzai/image-feed/internal/logger"
	"github.com/brizzai/image-feed/internal/models"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Unsplash and store the access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildComponents(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if c.session.Authorized() {
			pterm.Info.Println("Already signed in, run `image-feed logout` to switch accounts")
			return nil
		}

		ctx, cancel := signalContext()
		defer cancel()

		codes, callbackAddr, err := startCallback(ctx, c)
		if err != nil {
			return err
		}

		pterm.DefaultSection.Println("Sign in to Unsplash")
		pterm.Println("Open this address in your browser and grant access:")
		pterm.Println()
		pterm.FgCyan.Println(c.session.AuthURL())
		pterm.Println()
		if callbackAddr != "" {
			pterm.Info.Printfln("Waiting for the browser to return to http://%s", callbackAddr)
		}
		pterm.Println("Or paste the address of the page you were redirected to:")

		pasted := readRedirects(c.interceptor)
		for {
			var code string
			select {
			case <-ctx.Done():
				return ctx.Err()
			case code = <-codes:
			case code = <-pasted:
			}

			spinner, _ := pterm.DefaultSpinner.Start("Signing in...")
			if err := c.session.Login(ctx, code); err != nil {
				spinner.Fail(err.Error())
				pterm.Println("Sign in again in the browser or paste another redirect address:")
				continue
			}
			if p, _, ok := c.session.Profile(); ok {
				spinner.Success("Signed in as " + p.LoginName)
			} else {
				spinner.Success("Signed in")
			}
			return nil
		}
	},
}

// readRedirects reads pasted redirect addresses from stdin and delivers the
// authorization codes they carry
func readRedirects(interceptor auth.Interceptor) <-chan string {
	codes := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			code, policy := interceptor.Decide(line)
			if policy != auth.PolicyCancel {
				pterm.Warning.Println("That address does not carry an authorization code")
				continue
			}
			codes <- code
		}
	}()
	return codes
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildComponents(cmd)
		if err != nil {
			return err
		}
		if !c.session.Authorized() {
			pterm.Info.Println("Not signed in")
			return nil
		}
		if err := c.session.Logout(); err != nil {
			return err
		}
		pterm.Success.Println("Bye, bye!")
		return nil
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print pages of the photo feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := signedInComponents(cmd)
		if err != nil {
			return err
		}
		pages, _ := cmd.Flags().GetInt("pages")

		ctx, cancel := signalContext()
		defer cancel()

		for i := 0; i < pages; i++ {
			before := c.feed.Count()
			if err := c.feed.FetchNextPage(ctx); err != nil {
				return fmt.Errorf("failed to load page %d: %w", c.feed.LastLoadedPage()+1, err)
			}
			if c.feed.Count() == before {
				break
			}
		}

		photos := c.feed.Photos()
		if len(photos) == 0 {
			pterm.Info.Println("The feed is empty")
			return nil
		}
		data := pterm.TableData{{"ID", "Liked", "Likes", "Author", "Size", "Description"}}
		for _, p := range photos {
			data = append(data, []string{
				p.ID,
				likedMark(p.IsLiked),
				strconv.Itoa(p.Likes),
				authorName(p.Author),
				fmt.Sprintf("%d×%d", p.Width, p.Height),
				truncate(p.Description, 40),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

var photoCmd = &cobra.Command{
	Use:   "photo ID",
	Short: "Show the details of one photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := signedInComponents(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		p, err := c.feed.PhotoDetails(ctx, args[0])
		if err != nil {
			return err
		}

		pterm.DefaultSection.Println("Photo " + p.ID)
		rows := pterm.TableData{
			{"Author", authorName(p.Author)},
			{"Size", fmt.Sprintf("%d × %d", p.Width, p.Height)},
			{"Likes", strconv.Itoa(p.Likes)},
			{"Liked", likedMark(p.IsLiked)},
		}
		if p.CreatedAt != nil {
			rows = append(rows, []string{"Created", p.CreatedAt.Format("2 January 2006")})
		}
		if p.Description != "" {
			rows = append(rows, []string{"Description", p.Description})
		}
		rows = append(rows,
			[]string{"Full size", p.LargeImageURL},
			[]string{"Thumbnail", p.ThumbImageURL},
		)
		return pterm.DefaultTable.WithData(rows).Render()
	},
}

var likeCmd = &cobra.Command{
	Use:   "like ID",
	Short: "Like a photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangeLike(cmd, args[0], true)
	},
}

var unlikeCmd = &cobra.Command{
	Use:   "unlike ID",
	Short: "Remove the like from a photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangeLike(cmd, args[0], false)
	},
}

func runChangeLike(cmd *cobra.Command, id string, like bool) error {
	c, err := signedInComponents(cmd)
	if err != nil {
		return err
	}
	pages, _ := cmd.Flags().GetInt("pages")

	ctx, cancel := signalContext()
	defer cancel()

	// only loaded photos can be toggled
	for i := 0; i < pages; i++ {
		if _, ok := c.feed.Photo(id); ok {
			break
		}
		before := c.feed.Count()
		if err := c.feed.FetchNextPage(ctx); err != nil {
			return err
		}
		if c.feed.Count() == before {
			break
		}
	}

	if err := c.feed.ChangeLike(ctx, id, like); err != nil {
		if errors.Is(err, feed.ErrPhotoNotFound) {
			return fmt.Errorf("photo %s is not in the first %d feed pages", id, pages)
		}
		return err
	}
	if like {
		pterm.Success.Printfln("Liked %s", id)
	} else {
		pterm.Success.Printfln("Unliked %s", id)
	}
	return nil
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := signedInComponents(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		p, err := c.profile.FetchProfile(ctx)
		if err != nil {
			return err
		}
		avatarURL, err := c.avatar.FetchAvatarURL(ctx, p.Username)
		if err != nil {
			logger.Warn("Avatar unavailable", zap.Error(err))
		}

		pterm.DefaultSection.Println(p.Name)
		rows := pterm.TableData{{"Login", p.LoginName}}
		if p.Bio != "" {
			rows = append(rows, []string{"Bio", p.Bio})
		}
		if avatarURL != "" {
			rows = append(rows, []string{"Avatar", avatarURL})
		}
		return pterm.DefaultTable.WithData(rows).Render()
	},
}

func init() {
	feedCmd.Flags().Int("pages", 1, "Number of pages to load")
	likeCmd.Flags().Int("pages", 3, "Number of feed pages to search for the photo")
	unlikeCmd.Flags().Int("pages", 3, "Number of feed pages to search for the photo")
}

// signedInComponents builds the components and fails without a stored token
func signedInComponents(cmd *cobra.Command) (*components, error) {
	c, err := buildComponents(cmd)
	if err != nil {
		return nil, err
	}
	if !c.session.Authorized() {
		return nil, errNotSignedIn
	}
	return c, nil
}

func likedMark(liked bool) string {
	if liked {
		return "♥"
	}
	return "♡"
}

func authorName(a models.Author) string {
	if a.Name != "" {
		return a.Name
	}
	if a.Username != "" {
		return "@" + a.Username
	}
	return "-"
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
