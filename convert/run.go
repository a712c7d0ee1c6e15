package convert

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"u2b/common"
	"u2b/content"
	"u2b/extract"
	"u2b/state"
	"u2b/utils/images"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no article URL has been specified")
	}
	if u, err := url.Parse(src); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("input source is not an http(s) URL (%s)", src)
	}

	dst := cmd.Args().Get(1)
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format, err := selectFormat(cmd.String("to"), dst)
	if err != nil {
		return err
	}

	env.Overwrite = cmd.Bool("overwrite")
	env.CustomTitle = cmd.String("title")
	env.FontFamily = cmd.String("font")
	if n := cmd.Int("max-images"); cmd.IsSet("max-images") {
		env.Cfg.Document.Images.Max = int(n)
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, format, log)
}

// selectFormat picks the output format: explicit request wins, otherwise the
// destination extension decides, pdf is the fallback.
func selectFormat(requested, dst string) (common.OutputFmt, error) {
	if len(requested) != 0 {
		return common.ParseOutputFmt(requested)
	}
	if len(dst) != 0 && len(filepath.Ext(dst)) != 0 {
		if format, err := common.ParseOutputFmtFromPath(dst); err == nil {
			return format, nil
		}
	}
	return common.OutputFmtPdf, nil
}

// process runs the pipeline: extract article, download images, render the
// document. Independent of the CLI framework.
func process(ctx context.Context, src, dst string, format common.OutputFmt, log *zap.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic during processing", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("internal failure: %v", r)
		}
	}()

	env := state.EnvFromContext(ctx)

	article, err := extract.New(env.Cfg.Document.Extract, log).FromURL(ctx, src)
	if err != nil {
		return fmt.Errorf("unable to extract article: %w", err)
	}
	if len(env.CustomTitle) != 0 {
		article.Meta.Title = env.CustomTitle
	}

	imgs := images.NewFetcher(env.Cfg.Document.Images, log).Fetch(ctx, article.TopImage, article.Images)
	defer func() {
		if e := images.Cleanup(imgs); e != nil {
			log.Warn("Unable to remove temporary images", zap.Error(e))
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	doc := &content.Document{Meta: article.Meta, Blocks: article.Blocks}
	if env.Debug {
		dumpDocument(log, doc, imgs)
	}

	out, err := buildOutputPath(doc, src, dst, format, env)
	if err != nil {
		return err
	}
	if !env.Overwrite {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("output file already exists (%s), use --ow to overwrite", out)
		}
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := For(format, env, log).Render(ctx, doc, imgs, out); err != nil {
		return fmt.Errorf("unable to render %s: %w", format, err)
	}
	log.Info("Document ready", zap.String("file", out), zap.Int("blocks", len(doc.Blocks)), zap.Int("images", len(imgs)))
	return nil
}
