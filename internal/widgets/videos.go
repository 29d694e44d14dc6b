package widgets

import (
	"net/http"
	"net/url"
	"sort"

	"github.com/2beens/wellnesscoach/internal/telemetry/tracing"
	"github.com/2beens/wellnesscoach/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// VideoFilesPath is where the video files are served from.
const VideoFilesPath = "/videos/files/"

var exerciseVideos = map[string]string{
	"Push-ups": "push-up.mp4",
	"Pull-ups": "pull-up.mp4",
	"Boxing":   "boxing.mp4",
}

// VideoSrc maps an exercise name to its video url path.
func VideoSrc(exercise string) (string, bool) {
	file, ok := exerciseVideos[exercise]
	if !ok {
		return "", false
	}
	return VideoFilesPath + file, true
}

// Exercises lists the exercises that have a demo video, sorted.
func Exercises() []string {
	names := make([]string, 0, len(exerciseVideos))
	for name := range exerciseVideos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type VideoResponse struct {
	Exercise string `json:"exercise"`
	Src      string `json:"src,omitempty"`
	Error    string `json:"error,omitempty"`
}

type VideosHandler struct {
	videosDir string
}

func NewVideosHandler(videosDir string) *VideosHandler {
	return &VideosHandler{videosDir: videosDir}
}

func (handler *VideosHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	videos := make([]VideoResponse, 0, len(exerciseVideos))
	for _, name := range Exercises() {
		src, _ := VideoSrc(name)
		videos = append(videos, VideoResponse{Exercise: name, Src: src})
	}
	pkg.WriteJSON(w, videos, http.StatusOK)
}

func (handler *VideosHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.videos.get")
	defer span.End()

	exercise, err := url.PathUnescape(mux.Vars(r)["exercise"])
	if err != nil || exercise == "" {
		http.Error(w, "error, exercise empty", http.StatusBadRequest)
		return
	}

	src, ok := VideoSrc(exercise)
	if !ok {
		unavailable := &ErrVideoUnavailable{Exercise: exercise}
		log.Tracef("video lookup: %s", unavailable)
		pkg.WriteJSON(w, VideoResponse{Exercise: exercise, Error: unavailable.Error()}, http.StatusNotFound)
		return
	}
	pkg.WriteJSON(w, VideoResponse{Exercise: exercise, Src: src}, http.StatusOK)
}

// FileServer serves the video files under VideoFilesPath.
func (handler *VideosHandler) FileServer() http.Handler {
	return http.StripPrefix(VideoFilesPath, http.FileServer(http.Dir(handler.videosDir)))
}
