package gpuimage

import "log/slog"

// program is a linked program plus the locations resolved from it. A
// *program only exists after a successful link, so holding one is proof the
// owning filter is initialized.
type program struct {
	id        Program
	position  AttribLocation
	texCoord  AttribLocation
	sampler   UniformLocation
	locations map[string]UniformLocation
}

// location returns the cached location of name, asking the context the first
// time only.
func (p *program) location(ctx Context, name string) UniformLocation {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := ctx.UniformLocation(p.id, name)
	p.locations[name] = loc
	return loc
}

// loadProgram compiles both units and links them. Failures are logged with
// the backend's diagnostic and returned; no handles leak on failure.
func loadProgram(ctx Context, vertexSrc, fragmentSrc string) (*program, error) {
	log := Logger()

	vs, err := ctx.CreateShader(VertexStage, vertexSrc)
	if err != nil {
		log.Warn("gpuimage: vertex shader failed", slog.Any("error", err))
		return nil, err
	}
	defer ctx.DeleteShader(vs)

	fs, err := ctx.CreateShader(FragmentStage, fragmentSrc)
	if err != nil {
		log.Warn("gpuimage: fragment shader failed", slog.Any("error", err))
		return nil, err
	}
	defer ctx.DeleteShader(fs)

	id, err := ctx.CreateProgram(vs, fs)
	if err != nil {
		log.Warn("gpuimage: program link failed", slog.Any("error", err))
		return nil, err
	}

	p := &program{
		id:        id,
		position:  ctx.AttribLocation(id, AttribPosition),
		texCoord:  ctx.AttribLocation(id, AttribTextureCoordinate),
		sampler:   ctx.UniformLocation(id, SamplerInputImage),
		locations: make(map[string]UniformLocation),
	}
	log.Debug("gpuimage: program linked", slog.Uint64("program", uint64(id)))
	return p, nil
}
