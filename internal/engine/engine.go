package engine

import (
	"bytes"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"amplitude/internal/amerr"
	"amplitude/internal/asset"
	"amplitude/internal/bus"
	"amplitude/internal/buffer"
	"amplitude/internal/concur"
	"amplitude/internal/dspprim"
	"amplitude/internal/hrir"
	"amplitude/internal/mixer"
	"amplitude/internal/pipeline"
	"amplitude/internal/spatial"
	"amplitude/internal/voice"
)

const (
	pipelineInputNode pipeline.NodeID = iota
	pipelineObstructionNode
	pipelineOcclusionNode
	pipelineGainNode
	pipelineOutputNode
)

const commandQueueSpinCount = 64

// realChannelState is everything the audio thread keeps per bound real
// channel beyond what mixer.RealChannel itself tracks: the obstruction/
// occlusion filters and the spatializer state, which must persist
// across blocks rather than being rebuilt every render.
type realChannelState struct {
	obstructionFilter *dspprim.Biquad
	occlusionFilter   *dspprim.Biquad
	gainRamp          *dspprim.GainProcessor
	hrtf              *mixer.HRTFSpatializer
	binaural          *mixer.BinauralSpatializer

	// graph runs the obstruction -> occlusion -> gain chain as the
	// per-real-channel node DAG; input is the externally-fed node the
	// engine rebinds every block before calling graph.RunBlock.
	graph *pipeline.Pipeline
	input *pipeline.InputNode

	scratchMono []float32
	scratchL    []float32
	scratchR    []float32
}

// buildGraph wires the obstruction/occlusion filters and the gain ramp
// into a five-node pipeline (input -> obstruction -> occlusion -> gain,
// output reading the gain stage), the per-real-channel DAG named by
// the pipeline component. Spatialization stays outside the graph since
// it changes channel count (mono in, stereo out) rather than
// processing in place.
func (st *realChannelState) buildGraph() error {
	input := pipeline.NewInputNode(pipelineInputNode)
	obstruction := pipeline.NewProcessorNode(pipelineObstructionNode, pipelineInputNode, func(buf [][]float32) {
		st.obstructionFilter.Process(0, buf[0])
	})
	occlusion := pipeline.NewProcessorNode(pipelineOcclusionNode, pipelineObstructionNode, func(buf [][]float32) {
		st.occlusionFilter.Process(0, buf[0])
	})
	gain := pipeline.NewProcessorNode(pipelineGainNode, pipelineOcclusionNode, func(buf [][]float32) {
		st.gainRamp.Process(buf[0])
	})
	output := pipeline.NewOutputNode(pipelineOutputNode, pipelineGainNode)

	graph, err := pipeline.Build([]pipeline.Node{input, obstruction, occlusion, gain, output})
	if err != nil {
		return err
	}
	st.graph = graph
	st.input = input
	return nil
}

func (st *realChannelState) ensureLen(n int) {
	if len(st.scratchMono) >= n {
		return
	}
	st.scratchMono = make([]float32, n)
	st.scratchL = make([]float32, n)
	st.scratchR = make([]float32, n)
}

// Engine is the top-level frontend: command queue, entity registries,
// bus tree, and the driver-pull Render entry point. All public setters
// are safe to call from any game thread; Render must only ever be
// called from the single audio-callback thread.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	listeners    *Pool[Listener]
	entities     *Pool[Entity]
	rooms        *Pool[Room]
	channels     *Pool[*ChannelSlot]
	realChannels *Pool[*mixer.RealChannel]
	realState    map[Handle]*realChannelState
	channelHandles map[uint32]Handle // priority-list index -> live channel handle

	buses         *bus.Tree
	masterScratch *buffer.Buffer
	commands      *concur.SpinQueue
	loader        *concur.TaskPool
	freeList      *asset.FreeList

	hrirSphere *hrir.Sphere

	priority *voice.PriorityList

	regMu          sync.Mutex // game-thread-only: asset registry + id counters
	sourcesByID    map[uint64]*asset.Source
	sourcesByName  map[string]*asset.Source
	nextInstanceID uint64
	nextLayerSeed  uint32

	totalTime  float64
	masterGain atomic.Uint32 // float32 bits
	muted      atomic.Bool
	pausedAll  atomic.Bool

	bestListener Handle

	frameMu            sync.Mutex // audio-thread only, guards nextFrameCallbacks from drain-time posts
	nextFrameCallbacks []func()

	errorCount atomic.Uint64
	dropCount  atomic.Uint64
}

// Initialize constructs an Engine from cfg: preallocated entity pools,
// the bus tree, the command queue, and the loader pool. Call
// LoadHRIRSphere afterward before any channel requests HRTF panning.
func Initialize(cfg Config, logger *slog.Logger) (*Engine, error) {
	if cfg.MaxChannels <= 0 {
		return nil, amerr.New(amerr.InvalidParameter, "engine: max_channels must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	framesPerBuffer := cfg.FramesPerBuffer
	if framesPerBuffer <= 0 {
		framesPerBuffer = 512
	}
	e := &Engine{
		cfg:            cfg,
		logger:         logger,
		listeners:      NewPool[Listener](maxInt(cfg.ListenersCapacity, 1)),
		entities:       NewPool[Entity](maxInt(cfg.EntitiesCapacity, 1)),
		rooms:          NewPool[Room](maxInt(cfg.RoomsCapacity, 1)),
		channels:       NewPool[*ChannelSlot](cfg.MaxChannels),
		realChannels:   NewPool[*mixer.RealChannel](cfg.MaxChannels),
		realState:      make(map[Handle]*realChannelState),
		channelHandles: make(map[uint32]Handle),
		buses:          bus.NewTree(2, framesPerBuffer),
		masterScratch:  buffer.New(2, framesPerBuffer),
		commands:       concur.NewSpinQueue(256, commandQueueSpinCount),
		loader:         concur.NewTaskPool(2, 64),
		freeList:       asset.NewFreeList(256),
		priority:       voice.NewPriorityList(cfg.MaxChannels),
		sourcesByID:    make(map[uint64]*asset.Source),
		sourcesByName:  make(map[string]*asset.Source),
	}
	e.masterGain.Store(float32bits(1))
	return e, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Deinitialize stops the loader pool and drops every live channel's
// resources. Render must not be called again afterward.
func (e *Engine) Deinitialize() {
	e.channels.Each(func(h Handle, slot **ChannelSlot) {
		e.releaseChannelResources(*slot)
	})
	e.loader.Stop()
}

// LoadHRIRSphere parses an AMIR sphere from raw and binds it for HRTF
// panning. Safe to call once at load time before any HRTF channel is
// created.
func (e *Engine) LoadHRIRSphere(raw []byte) error {
	sphere, err := hrir.Load(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	e.hrirSphere = sphere
	return nil
}

// RegisterSource adds src to the by-id and by-name registries. Safe to
// call from any game thread; the registry map is protected by regMu and
// never touched from Render.
func (e *Engine) RegisterSource(src *asset.Source) {
	e.regMu.Lock()
	defer e.regMu.Unlock()
	e.sourcesByID[src.ID] = src
	if src.Name != "" {
		e.sourcesByName[src.Name] = src
	}
}

// SourceByName and SourceByID resolve the asset registries.
func (e *Engine) SourceByName(name string) (*asset.Source, bool) {
	e.regMu.Lock()
	defer e.regMu.Unlock()
	s, ok := e.sourcesByName[name]
	return s, ok
}

func (e *Engine) SourceByID(id uint64) (*asset.Source, bool) {
	e.regMu.Lock()
	defer e.regMu.Unlock()
	s, ok := e.sourcesByID[id]
	return s, ok
}

// CreateListener / CreateEntity / CreateRoom allocate a slot in the
// corresponding pool.
func (e *Engine) CreateListener(userID uint64) (Handle, error) {
	h, ok := e.listeners.Acquire(Listener{Positioned: NewPositioned(userID)})
	if !ok {
		return Invalid, amerr.New(amerr.OutOfMemory, "engine: listener pool exhausted")
	}
	return h, nil
}

func (e *Engine) CreateEntity(userID uint64) (Handle, error) {
	h, ok := e.entities.Acquire(Entity{Positioned: NewPositioned(userID)})
	if !ok {
		return Invalid, amerr.New(amerr.OutOfMemory, "engine: entity pool exhausted")
	}
	return h, nil
}

func (e *Engine) CreateRoom(room Room) (Handle, error) {
	h, ok := e.rooms.Acquire(room)
	if !ok {
		return Invalid, amerr.New(amerr.OutOfMemory, "engine: room pool exhausted")
	}
	return h, nil
}

// UpdateListener / UpdateEntity post a position/orientation update,
// applied on the next drain.
func (e *Engine) UpdateListener(h Handle, position, forward, up spatial.Vec3, dt float64) {
	e.post(func(e *Engine) {
		if l, ok := e.listeners.GetPtr(h); ok {
			l.Update(position, forward, up, dt)
		}
	})
}

func (e *Engine) UpdateEntity(h Handle, position, forward, up spatial.Vec3, dt float64) {
	e.post(func(e *Engine) {
		if ent, ok := e.entities.GetPtr(h); ok {
			ent.Update(position, forward, up, dt)
		}
	})
}

// Play creates a channel bound to the named source and entity, starting
// its fade-in over fadeSeconds (0 for immediate), and returns its
// handle synchronously. Channel creation is a pool acquire plus a
// priority-list insert, cheap and self-synchronized, so unlike a real-
// channel bind (audio-thread only) it does not need to round-trip
// through the command reply slot the source's design uses.
func (e *Engine) Play(sourceName string, entity Handle, busID bus.ID, gain float32, fadeSeconds float64) (Handle, error) {
	src, ok := e.SourceByName(sourceName)
	if !ok {
		return Invalid, amerr.New(amerr.NotFound, "engine: unknown source name")
	}
	slot := newChannelSlot()
	slot.kind = PlayableSound
	slot.source = src
	slot.Entity = entity
	slot.Bus = busID
	slot.UserGain = gain
	slot.EffectiveGain = gain

	h, ok := e.channels.Acquire(slot)
	if !ok {
		return Invalid, amerr.New(amerr.OutOfMemory, "engine: channel pool exhausted")
	}

	e.post(func(e *Engine) {
		cs, ok := e.channels.Get(h)
		if !ok {
			return
		}
		e.channelHandles[h.Index] = h
		cs.Play(fadeSeconds, e.totalTime)
		e.priority.Upsert(h.Index, cs.Priority())
	})
	return h, nil
}

// Stop/Pause/Resume post the corresponding logical-channel transition.
func (e *Engine) Stop(h Handle, fadeSeconds float64) {
	e.post(func(e *Engine) { e.stopChannel(h, fadeSeconds) })
}

func (e *Engine) Pause(h Handle, fadeSeconds float64) {
	e.post(func(e *Engine) {
		if cs, ok := e.channels.Get(h); ok {
			cs.Pause(fadeSeconds, e.totalTime)
		}
	})
}

func (e *Engine) Resume(h Handle, fadeSeconds float64) {
	e.post(func(e *Engine) {
		if cs, ok := e.channels.Get(h); ok {
			cs.Resume(fadeSeconds, e.totalTime)
		}
	})
}

// stopChannel is the audio-thread-side implementation shared by Stop
// and EventCanceler.Cancel.
func (e *Engine) stopChannel(h Handle, fadeSeconds float64) {
	cs, ok := e.channels.Get(h)
	if !ok {
		return
	}
	cs.Stop(fadeSeconds, e.totalTime)
	if cs.State == voice.Stopped {
		e.releaseChannelResources(cs)
		e.priority.Remove(h.Index)
		delete(e.channelHandles, h.Index)
		e.channels.Release(h)
	}
}

// SetChannelGain / SetChannelPan / SetChannelPitch post parameter
// setters; the actual ramp is advanced during Render step 4.
func (e *Engine) SetChannelGain(h Handle, gain float32) {
	e.post(func(e *Engine) {
		if cs, ok := e.channels.Get(h); ok {
			cs.UserGain = gain
		}
	})
}

func (e *Engine) SetChannelPan(h Handle, pan float32) {
	e.post(func(e *Engine) {
		if cs, ok := e.channels.Get(h); ok {
			cs.Pan = pan
		}
	})
}

func (e *Engine) SetChannelPitch(h Handle, pitch float32) {
	e.post(func(e *Engine) {
		if cs, ok := e.channels.Get(h); ok {
			cs.Pitch = pitch
		}
	})
}

func (e *Engine) SetChannelObstruction(h Handle, v float32) {
	e.post(func(e *Engine) {
		if cs, ok := e.channels.Get(h); ok {
			cs.Obstruction = v
			if rc, bound := e.realChannelState(cs); bound {
				rc.SetObstruction(v)
			}
		}
	})
}

func (e *Engine) SetChannelOcclusion(h Handle, v float32) {
	e.post(func(e *Engine) {
		if cs, ok := e.channels.Get(h); ok {
			cs.Occlusion = v
			if rc, bound := e.realChannelState(cs); bound {
				rc.SetOcclusion(v)
			}
		}
	})
}

// SetMasterGain / SetMuted / SetPausedAll are atomics, safe without
// going through the command queue since they are read-only scalars on
// the render path.
func (e *Engine) SetMasterGain(gain float32) { e.masterGain.Store(float32bits(gain)) }
func (e *Engine) MasterGain() float32        { return float32frombits(e.masterGain.Load()) }
func (e *Engine) SetMuted(muted bool)        { e.muted.Store(muted) }
func (e *Engine) SetPausedAll(paused bool)   { e.pausedAll.Store(paused) }

// Trigger plays the named event bound to entity and returns a canceler.
// An event is, for this reimplementation, a direct alias for Play at
// unity gain with no fade — the richer event/action-tree model the
// source supports is out of this spec's scope.
func (e *Engine) Trigger(eventSourceName string, entity Handle, busID bus.ID) (EventCanceler, error) {
	h, err := e.Play(eventSourceName, entity, busID, 1, 0)
	if err != nil {
		return EventCanceler{}, err
	}
	return EventCanceler{channel: h, e: e}, nil
}

// NextFrameCallback queues f to run at the start of the next drain.
func (e *Engine) NextFrameCallback(f func()) {
	e.post(func(e *Engine) {
		e.frameMu.Lock()
		e.nextFrameCallbacks = append(e.nextFrameCallbacks, f)
		e.frameMu.Unlock()
	})
}

// MasterBus returns the bus tree's master bus id.
func (e *Engine) MasterBus() bus.ID { return e.buses.Master() }

// CreateBus allocates a child bus under parent, stereo-sized to match
// the engine's configured block size.
func (e *Engine) CreateBus(name string, parent bus.ID) (bus.ID, error) {
	framesPerBuffer := e.cfg.FramesPerBuffer
	if framesPerBuffer <= 0 {
		framesPerBuffer = 512
	}
	return e.buses.CreateBus(name, parent, 2, framesPerBuffer)
}

// SetBusGain and SetBusMute update a bus's gain/mute atomics directly;
// safe from any thread per the bus tree's own concurrency contract.
func (e *Engine) SetBusGain(id bus.ID, gain float32) error { return e.buses.SetGain(id, gain) }
func (e *Engine) SetBusMute(id bus.ID, mute bool) error    { return e.buses.SetMute(id, mute) }

// Stats reports cumulative audio-thread counters for diagnostics, read
// without blocking the render path. Errors counts recovered render
// errors; no render path increments Drops, so it reads zero.
type Stats struct {
	Errors uint64
	Drops  uint64
}

func (e *Engine) Stats() Stats {
	return Stats{Errors: e.errorCount.Load(), Drops: e.dropCount.Load()}
}

// releaseChannelResources tears down a channel's real-channel binding
// (if any) and releases its per-channel spatializer state. Called both
// when a channel reaches Stopped naturally and at Deinitialize.
func (e *Engine) releaseChannelResources(cs *ChannelSlot) {
	if cs == nil || !cs.realChannel.IsValid() {
		return
	}
	if rc, ok := e.realChannels.Get(cs.realChannel); ok {
		for id := range rc.Layers() {
			rc.DestroyLayer(id, e.freeList)
		}
	}
	delete(e.realState, cs.realChannel)
	e.realChannels.Release(cs.realChannel)
	cs.realChannel = Invalid
	cs.UnbindReal()
}

// Render is the driver-pull entry point: fill dst (one plane per output
// channel, already sized to frameCount) with planar f32 samples in
// [-1, 1]. It implements the seven-step block algorithm: drain, advance
// clocks, best-listener assignment, advance ramps, resolve priority,
// pull real channels, emit.
func (e *Engine) Render(dst [][]float32, frameCount int) int {
	defer func() {
		if r := recover(); r != nil {
			e.errorCount.Add(1)
			for c := range dst {
				for i := range dst[c] {
					dst[c][i] = 0
				}
			}
		}
	}()

	// Step 1: drain commands.
	e.drain()

	e.frameMu.Lock()
	callbacks := e.nextFrameCallbacks
	e.nextFrameCallbacks = nil
	e.frameMu.Unlock()
	for _, f := range callbacks {
		f()
	}

	sampleRate := float64(e.cfg.OutputSampleRate)
	if sampleRate <= 0 {
		sampleRate = 48000
	}

	// Step 2: advance total_time and every channel's fader.
	e.totalTime += float64(frameCount) / sampleRate
	e.channels.Each(func(h Handle, slot **ChannelSlot) {
		(*slot).Advance(e.totalTime)
	})

	// Step 3: best-listener assignment per playing channel.
	e.assignBestListener()

	// Step 4: advance parameter ramps (gain/pan/pitch); obstruction/
	// occlusion curves are sampled per-block in renderRealChannel.
	if !e.pausedAll.Load() {
		e.channels.Each(func(h Handle, slot **ChannelSlot) {
			cs := *slot
			cs.EffectiveGain = cs.UserGain * float32(cs.FaderValue(e.totalTime))
			e.priority.Upsert(h.Index, cs.Priority())
			if rc, bound := e.realChannelState(cs); bound {
				rc.SetGainPan(cs.EffectiveGain, 1, cs.Pan)
				rc.SetPitch(cs.Pitch)
			}
		})
	}

	// Step 5: resolve priority list, devirtualizing/virtualizing.
	becameReal, becameVirtual := e.priority.Resolve()
	for _, idx := range becameVirtual {
		e.virtualizeChannel(idx)
	}
	for _, idx := range becameReal {
		e.realizeChannel(idx)
	}

	for c := range dst {
		for i := range dst[c] {
			dst[c][i] = 0
		}
	}

	if !e.pausedAll.Load() {
		// Step 6: pull frames through every live real channel.
		e.realChannels.Each(func(rh Handle, rcp **mixer.RealChannel) {
			e.renderRealChannel(rh, *rcp, frameCount)
		})
	}

	e.buses.RenderMaster(e.masterScratch)
	master := e.buses.Mix(e.buses.Master())

	// Step 7: emit. masterGain/mute apply here, at the very last stage.
	if master != nil {
		masterGain := float32frombits(e.masterGain.Load())
		if e.muted.Load() {
			masterGain = 0
		}
		for c := range dst {
			if c >= master.Channels() {
				continue
			}
			plane := master.Plane(c)
			n := frameCount
			if n > len(plane) {
				n = len(plane)
			}
			if n > len(dst[c]) {
				n = len(dst[c])
			}
			for i := 0; i < n; i++ {
				v := plane[i] * masterGain
				if v > 1 {
					v = 1
				} else if v < -1 {
					v = -1
				}
				dst[c][i] = v
			}
		}
	}
	e.buses.ClearAll()

	return frameCount
}

// assignBestListener picks, among all listeners, the one nearest each
// playing channel's bound entity: smallest squared distance wins,
// deterministic tie-break by listener handle index. The result is a
// single engine-wide best listener, since this reimplementation renders
// one spatialization pass per channel against one listener rather than
// the source's full per-listener submix graph.
func (e *Engine) assignBestListener() {
	best := Invalid
	bestDist := math.MaxFloat64
	e.channels.Each(func(h Handle, slot **ChannelSlot) {
		cs := *slot
		if cs.State != voice.Playing && cs.State != voice.FadingIn {
			return
		}
		ent, ok := e.entities.Get(cs.Entity)
		if !ok {
			return
		}
		e.listeners.Each(func(lh Handle, l *Listener) {
			d := l.Position.Sub(ent.Position)
			dist := d.Dot(d)
			if dist < bestDist || (dist == bestDist && (!best.IsValid() || lh.Index < best.Index)) {
				bestDist = dist
				best = lh
			}
		})
	})
	if best.IsValid() {
		e.bestListener = best
	}
}

// virtualizeChannel drops idx's real-channel binding, freeing the real
// channel slot for the next devirtualized channel.
func (e *Engine) virtualizeChannel(idx uint32) {
	cs, ok := e.channelByIndex(idx)
	if !ok {
		return
	}
	if cs.realChannel.IsValid() {
		if rc, ok := e.realChannels.Get(cs.realChannel); ok {
			for id := range rc.Layers() {
				rc.DestroyLayer(id, e.freeList)
			}
		}
		delete(e.realState, cs.realChannel)
		e.realChannels.Release(cs.realChannel)
		cs.realChannel = Invalid
	}
	cs.UnbindReal()
}

// realizeChannel binds idx a fresh real channel and opens its instance
// and per-real-channel DSP state (obstruction/occlusion filters, gain
// ramp, HRTF spatializer).
func (e *Engine) realizeChannel(idx uint32) {
	cs, ok := e.channelByIndex(idx)
	if !ok || cs.source == nil {
		return
	}

	e.regMu.Lock()
	e.nextInstanceID++
	instID := e.nextInstanceID
	e.nextLayerSeed++
	seed := e.nextLayerSeed
	e.regMu.Unlock()

	inst, err := asset.NewInstance(instID, cs.source)
	if err != nil {
		e.errorCount.Add(1)
		return
	}
	cs.instance = inst

	rh, ok := e.realChannels.Acquire(mixer.NewRealChannel(idx))
	if !ok {
		inst.Release(e.freeList)
		return
	}
	rc, _ := e.realChannels.Get(rh)
	rc.CreateLayer(seed, inst)

	sampleRate := float64(e.cfg.OutputSampleRate)
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	obstructionFilter := dspprim.NewBiquad(1, sampleRate)
	occlusionFilter := dspprim.NewBiquad(1, sampleRate)
	obstructionFilter.Retune(dspprim.LowPass, sampleRate/2, 0.707, 0)
	occlusionFilter.Retune(dspprim.LowPass, sampleRate/2, 0.707, 0)

	framesPerBuffer := e.cfg.FramesPerBuffer
	if framesPerBuffer <= 0 {
		framesPerBuffer = 512
	}
	st := &realChannelState{
		obstructionFilter: obstructionFilter,
		occlusionFilter:   occlusionFilter,
		gainRamp:          dspprim.NewGainProcessor(),
		scratchMono:       make([]float32, framesPerBuffer),
		scratchL:          make([]float32, framesPerBuffer),
		scratchR:          make([]float32, framesPerBuffer),
	}
	if e.hrirSphere != nil && e.cfg.PanningMode == PanHRTFMode {
		st.hrtf = mixer.NewHRTFSpatializer(e.hrirSphere, e.cfg.HRIRSamplingMode)
	}
	if e.hrirSphere != nil && isBinauralPanningMode(e.cfg.PanningMode) {
		st.binaural = mixer.NewBinauralSpatializer(e.hrirSphere, e.cfg.HRIRSamplingMode, binauralOrderFor(e.cfg.PanningMode))
	}
	if err := st.buildGraph(); err != nil {
		e.errorCount.Add(1)
		inst.Release(e.freeList)
		e.realChannels.Release(rh)
		return
	}
	e.realState[rh] = st

	cs.realChannel = rh
	cs.BindReal()
}

func (e *Engine) channelByIndex(idx uint32) (*ChannelSlot, bool) {
	h, ok := e.channelHandles[idx]
	if !ok {
		return nil, false
	}
	return e.channels.Get(h)
}

// renderRealChannel pulls frameCount samples through rc's layer(s), runs
// them through the real channel's obstruction/occlusion/gain pipeline,
// spatializes, and accumulates into the bound channel's bus mix. The
// reimplementation renders at most one concurrently-decoding layer per
// real channel in practice, since Collection/SwitchContainer scheduling
// already serializes which single sound is live at a time; the loop
// over rc.Layers() still mixes correctly if more than one is ever live.
func (e *Engine) renderRealChannel(rh Handle, rc *mixer.RealChannel, frameCount int) {
	st, ok := e.realState[rh]
	if !ok {
		return
	}
	cs, ok := e.channelByIndex(rc.ID)
	if !ok {
		return
	}
	st.ensureLen(frameCount)

	mono := st.scratchMono[:frameCount]
	for i := range mono {
		mono[i] = 0
	}
	for _, layer := range rc.Layers() {
		if layer.State != mixer.Play && layer.State != mixer.Loop {
			continue
		}
		channels := layer.Instance.Source.Format.Channels
		if channels < 1 {
			channels = 1
		}
		planes := make([][]float32, channels)
		for c := range planes {
			planes[c] = make([]float32, frameCount)
		}
		n, err := layer.Instance.ReadFrames(planes)
		if err != nil {
			e.errorCount.Add(1)
		}
		for i := 0; i < n; i++ {
			var sum float32
			for c := range planes {
				sum += planes[c][i]
			}
			mono[i] += (sum / float32(channels)) * layer.Gain
		}
		if layer.State == mixer.Play && n < frameCount {
			rc.DestroyLayer(layer.ID, e.freeList)
			cs.EndOfStream()
		}
	}

	obsCutoff := float64(e.cfg.OutputSampleRate) / 2 * dspprim.SampleCurve(e.cfg.ObstructionConfig.LowPassCurve, float64(cs.Obstruction), 1)
	obsGain := dspprim.SampleCurve(e.cfg.ObstructionConfig.GainCurve, float64(cs.Obstruction), 1)
	occCutoff := float64(e.cfg.OutputSampleRate) / 2 * dspprim.SampleCurve(e.cfg.OcclusionConfig.LowPassCurve, float64(cs.Occlusion), 1)
	occGain := dspprim.SampleCurve(e.cfg.OcclusionConfig.GainCurve, float64(cs.Occlusion), 1)

	st.obstructionFilter.Retune(dspprim.LowPass, obsCutoff, 0.707, 0)
	st.occlusionFilter.Retune(dspprim.LowPass, occCutoff, 0.707, 0)
	curveGain := obsGain * occGain
	for i := range mono {
		mono[i] *= curveGain
	}
	st.gainRamp.SetTarget(cs.EffectiveGain)

	st.input.SetBuffer([][]float32{mono})
	processed := st.graph.RunBlock()[0][:frameCount]
	mono = processed

	outL := st.scratchL[:frameCount]
	outR := st.scratchR[:frameCount]

	dir := e.relativeDirection(cs)
	switch {
	case st.hrtf != nil:
		if err := st.hrtf.Process(mono, dir, outL, outR); err != nil {
			e.errorCount.Add(1)
			copy(outL, mono)
			copy(outR, mono)
		}
	case st.binaural != nil:
		if err := st.binaural.Process(mono, dir, outL, outR); err != nil {
			e.errorCount.Add(1)
			copy(outL, mono)
			copy(outR, mono)
		}
	case e.cfg.PanningMode == PanPosition || e.cfg.PanningMode == PanPositionOrientation:
		sp := spatial.FromWorldSpace(dir)
		gl, gr := mixer.SphericalPan(sp)
		for i := 0; i < frameCount; i++ {
			outL[i] = mono[i] * gl
			outR[i] = mono[i] * gr
		}
	default:
		gl, gr := mixer.EqualPowerPan(cs.Pan)
		for i := 0; i < frameCount; i++ {
			outL[i] = mono[i] * gl
			outR[i] = mono[i] * gr
		}
	}

	busMix := e.buses.Mix(cs.Bus)
	if busMix == nil {
		busMix = e.buses.Mix(e.buses.Master())
	}
	if busMix != nil && busMix.Channels() >= 2 {
		n := frameCount
		if n > busMix.Frames() {
			n = busMix.Frames()
		}
		lPlane := busMix.Plane(0)
		rPlane := busMix.Plane(1)
		for i := 0; i < n; i++ {
			lPlane[i] += outL[i]
			rPlane[i] += outR[i]
		}
	}
}

// relativeDirection computes the best listener's listener-space
// direction to cs's bound entity, falling back to straight ahead when
// no listener or entity is resolvable.
func (e *Engine) relativeDirection(cs *ChannelSlot) spatial.Vec3 {
	l, ok := e.listeners.Get(e.bestListener)
	if !ok {
		return spatial.Vec3{Y: 1}
	}
	ent, ok := e.entities.Get(cs.Entity)
	if !ok {
		return spatial.Vec3{Y: 1}
	}
	return ent.Position.Sub(l.Position)
}
