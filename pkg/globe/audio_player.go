package globe

import (
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dhowden/tag"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/go-mp3"
	"github.com/rs/zerolog/log"
)

const (
	audioSampleRate = 44100
	audioFade       = 5 * time.Second
)

// TrackInfo describes the track being played.
type TrackInfo struct {
	Song, Artist, Album string
}

// AudioPlayer plays random MP3s from a directory in the background while
// the globe turns.
type AudioPlayer struct {
	Dir       string
	OnTrack   func(TrackInfo)
	audioCtx  *audio.Context
	rng       *rand.Rand
	stopping  atomic.Bool
	started   atomic.Bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
	stopOnce  sync.Once
	current   atomic.Pointer[TrackInfo]
}

func NewAudioPlayer(dir string, onTrack func(TrackInfo)) *AudioPlayer {
	return &AudioPlayer{
		Dir:       dir,
		OnTrack:   onTrack,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Current returns the track being played, if any.
func (p *AudioPlayer) Current() (TrackInfo, bool) {
	t := p.current.Load()
	if t == nil {
		return TrackInfo{}, false
	}
	return *t, true
}

// Shutdown fades the current track out and waits for playback to end.
func (p *AudioPlayer) Shutdown() {
	p.stopOnce.Do(func() {
		p.stopping.Store(true)
		close(p.stopCh)
		if p.started.Load() {
			log.Info().Msg("Audio fading out")
			<-p.stoppedCh
		}
		log.Info().Msg("Audio stopped")
	})
}

func (p *AudioPlayer) Start() {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(p.stoppedCh)
		for !p.stopping.Load() {
			tracks, err := findTracks(p.Dir)
			switch {
			case err != nil:
				log.Warn().Err(err).Str("dir", p.Dir).Msg("Failed to read audio directory")
			case len(tracks) == 0:
				log.Warn().Str("dir", p.Dir).Msg("No MP3 files found")
			default:
				path := tracks[p.rng.Intn(len(tracks))]
				err := p.playTrack(path)
				if err == nil {
					continue
				}
				log.Warn().Err(err).Str("path", path).Msg("Failed to play track")
			}
			select {
			case <-time.After(5 * time.Second):
			case <-p.stopCh:
				return
			}
		}
	}()
}

func findTracks(dir string) ([]string, error) {
	var tracks []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".mp3") {
			tracks = append(tracks, path)
		}
		return nil
	})
	return tracks, err
}

// readTrackInfo reads ID3 tags, falling back to "Song - Artist" in the file
// name and then the parent directory as the album.
func readTrackInfo(f *os.File, path, root string) TrackInfo {
	var info TrackInfo
	if m, err := tag.ReadFrom(f); err == nil {
		info = TrackInfo{Song: m.Title(), Artist: m.Artist(), Album: m.Album()}
	}
	if info.Song == "" {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		info.Song, info.Artist = name, ""
		if parts := strings.SplitN(name, " - ", 2); len(parts) == 2 {
			info.Song, info.Artist = parts[0], parts[1]
		}
	}
	if info.Album == "" {
		if parent := filepath.Dir(path); parent != filepath.Clean(root) && parent != "." {
			info.Album = filepath.Base(parent)
		}
	}
	return info
}

// fadeVolume is the track volume given the track length, the playback
// position and the time since shutdown began (negative when not stopping).
func fadeVolume(length, elapsed, sinceStop time.Duration) float64 {
	vol := 1.0
	if remaining := length - elapsed; remaining <= audioFade {
		vol = float64(remaining) / float64(audioFade)
	}
	if sinceStop >= 0 {
		vol = min(vol, 1-float64(sinceStop)/float64(audioFade))
	}
	return max(vol, 0)
}

func (p *AudioPlayer) playTrack(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info := readTrackInfo(f, path, p.Dir)
	p.current.Store(&info)
	defer p.current.Store(nil)
	if p.OnTrack != nil {
		p.OnTrack(info)
	}

	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	d, err := mp3.NewDecoder(f)
	if err != nil {
		return err
	}

	if p.audioCtx == nil {
		p.audioCtx = audio.CurrentContext()
		if p.audioCtx == nil {
			p.audioCtx = audio.NewContext(audioSampleRate)
		}
	}
	player, err := p.audioCtx.NewPlayer(d)
	if err != nil {
		return err
	}
	defer player.Close()
	player.Play()
	log.Info().Str("song", info.Song).Str("artist", info.Artist).Msg("Playing")

	length := time.Duration(d.Length()) * time.Second / time.Duration(d.SampleRate()*4)
	start := time.Now()
	var stoppingAt time.Time
	for player.IsPlaying() {
		sinceStop := time.Duration(-1)
		if p.stopping.Load() {
			if stoppingAt.IsZero() {
				stoppingAt = time.Now()
			}
			sinceStop = time.Since(stoppingAt)
		}
		elapsed := time.Since(start)
		vol := fadeVolume(length, elapsed, sinceStop)
		player.SetVolume(vol)
		if vol <= 0 || elapsed >= length {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}
