package session

import "go.aimuz.me/murmur/audiocapture"

// NewRecorder adapts an audiocapture.Manager to the Recorder interface.
func NewRecorder(m *audiocapture.Manager) Recorder {
	return managerRecorder{m: m}
}

type managerRecorder struct {
	m *audiocapture.Manager
}

func (r managerRecorder) Start(levelFn func(level float64)) (CaptureHandle, error) {
	h, err := r.m.Start(levelFn)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (r managerRecorder) Stop(h CaptureHandle) ([]byte, error) {
	return r.m.Stop(h.(*audiocapture.Handle))
}

func (r managerRecorder) Cancel(h CaptureHandle) {
	r.m.Cancel(h.(*audiocapture.Handle))
}
