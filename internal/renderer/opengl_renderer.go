package renderer

import (
	"DoorScene/internal/logger"
	"fmt"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var frustum Frustum

type OpenGLRenderer struct {
	Settings RenderSettings
	Models   []*Model

	sceneShader      Shader
	shadowShader     Shader
	backgroundShader Shader
	textures         *TextureManager
	shadowMap        *ShadowMap
	newShadowMap     func(size int32) (*ShadowMap, error)
	environment      *Environment

	currentShaderProgram uint32 // Track currently bound shader to avoid unnecessary switches
	width, height        int32  // Logical size in window coordinates
	pixelRatio           float32
	viewportDirty        bool
	initialized          bool
}

func NewOpenGLRenderer(settings RenderSettings) *OpenGLRenderer {
	settings.Sanitize()
	return &OpenGLRenderer{
		Settings:   settings,
		textures:     NewTextureManager(),
		pixelRatio:   1,
		newShadowMap: NewShadowMap,
	}
}

func (rend *OpenGLRenderer) Init(width, height int32, _ *glfw.Window) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("opengl init: %w", err)
	}
	logger.Log.Info("OpenGL context",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	if Debug {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
	if rend.Settings.MSAASamples > 0 {
		gl.Enable(gl.MULTISAMPLE)
	}

	rend.sceneShader = InitSceneShader()
	rend.shadowShader = InitShadowShader()
	rend.backgroundShader = InitBackgroundShader()
	for _, shader := range []*Shader{&rend.sceneShader, &rend.shadowShader, &rend.backgroundShader} {
		if err := shader.Compile(); err != nil {
			return err
		}
	}

	rend.textures.DefaultTexture()
	rend.SetSize(width, height)
	rend.initialized = true
	logger.Log.Info("OpenGL render initialized",
		zap.Int32("width", width),
		zap.Int32("height", height),
		zap.Int("msaa", rend.Settings.MSAASamples),
		zap.Bool("shadows", rend.Settings.EnableShadows))
	return nil
}

// AddModel queues model for drawing. GPU buffers are created on the next frame.
func (rend *OpenGLRenderer) AddModel(model *Model) {
	for _, m := range rend.Models {
		if m == model {
			return
		}
	}
	model.updateModelMatrix()
	rend.Models = append(rend.Models, model)
}

// AddGroup adds every mesh of group.
func (rend *OpenGLRenderer) AddGroup(group *Group) {
	group.Traverse(rend.AddModel)
}

func (rend *OpenGLRenderer) RemoveModel(model *Model) {
	for i, m := range rend.Models {
		if m == model {
			rend.Models = append(rend.Models[:i], rend.Models[i+1:]...)
			if rend.initialized {
				rend.deleteBuffers(model)
				rend.textures.ReleaseMaterial(model.Material)
			}
			return
		}
	}
}

// SetEnvironment replaces the background and image lighting panorama.
func (rend *OpenGLRenderer) SetEnvironment(env *Environment) {
	if rend.environment != nil && rend.environment != env && rend.initialized {
		rend.environment.Delete()
	}
	rend.environment = env
}

// SetPixelRatio sets the framebuffer pixels per window unit.
func (rend *OpenGLRenderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		ratio = 1
	}
	rend.pixelRatio = ratio
	rend.viewportDirty = true
}

// SetSize stores the logical drawing size. The viewport follows on the next frame.
func (rend *OpenGLRenderer) SetSize(width, height int32) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	rend.width, rend.height = width, height
	rend.viewportDirty = true
}

func (rend *OpenGLRenderer) Size() (int32, int32) {
	return rend.width, rend.height
}

// DrawingBufferSize is the size in framebuffer pixels.
func (rend *OpenGLRenderer) DrawingBufferSize() (int32, int32) {
	w := int32(math.Round(float64(float32(rend.width) * rend.pixelRatio)))
	h := int32(math.Round(float64(float32(rend.height) * rend.pixelRatio)))
	return w, h
}

func (rend *OpenGLRenderer) upload(model *Model) {
	if model.VAO != 0 {
		return
	}
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(model.InterleavedData)*4, gl.Ptr(model.InterleavedData), gl.STATIC_DRAW)

	var ebo uint32
	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(model.Faces)*4, gl.Ptr(model.Faces), gl.STATIC_DRAW)

	stride := int32(FloatsPerVertex * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)

	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, stride, gl.PtrOffset(5*4))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	model.VAO = vao
	model.VBO = vbo
	model.EBO = ebo
	logger.Log.Debug("Model uploaded",
		zap.String("name", model.Name),
		zap.Int("vertices", model.VertexCount()),
		zap.Int("indices", len(model.Faces)))
}

func (rend *OpenGLRenderer) uploadTextures(m *Material) {
	if m == nil {
		return
	}
	for _, tex := range m.Textures() {
		if tex.Uploaded() {
			continue
		}
		if _, err := rend.textures.Upload(tex); err != nil {
			logger.Log.Warn("Texture upload failed", zap.String("name", tex.Name), zap.Error(err))
		}
	}
}

func (rend *OpenGLRenderer) deleteBuffers(model *Model) {
	if model.VAO != 0 {
		gl.DeleteVertexArrays(1, &model.VAO)
		gl.DeleteBuffers(1, &model.VBO)
		gl.DeleteBuffers(1, &model.EBO)
		model.VAO, model.VBO, model.EBO = 0, 0, 0
	}
}

func (rend *OpenGLRenderer) Render(camera *Camera, light *Light) {
	for _, model := range rend.Models {
		rend.upload(model)
		rend.uploadTextures(model.Material)
	}
	env := rend.environment
	if env != nil && !env.Uploaded() {
		if err := env.Upload(); err != nil {
			logger.Log.Error("Environment upload failed", zap.String("name", env.Name), zap.Error(err))
			rend.environment, env = nil, nil
		}
	}

	var lightSpace mgl32.Mat4
	shadows := rend.ensureShadowMap(light)
	if light != nil {
		lightSpace = light.LightSpaceMatrix()
	}
	if shadows {
		rend.renderShadowPass(lightSpace)
	}

	fbWidth, fbHeight := rend.DrawingBufferSize()
	gl.Viewport(0, 0, fbWidth, fbHeight)
	rend.viewportDirty = false

	clear := rend.Settings.ClearColor
	gl.ClearColor(clear[0], clear[1], clear[2], 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if DepthTestEnabled {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthMask(true)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}

	if env != nil {
		env.RenderBackground(&rend.backgroundShader, camera, rend.Settings.Exposure)
		rend.currentShaderProgram = rend.backgroundShader.program
	}

	if FrustumCullingEnabled {
		updateFrustum(camera)
	}

	shader := &rend.sceneShader
	if rend.currentShaderProgram != shader.program {
		shader.Use()
		rend.currentShaderProgram = shader.program
	}
	rend.setFrameUniforms(shader, camera, light, lightSpace, shadows, env)

	for _, model := range rend.Models {
		if model.VAO == 0 {
			continue
		}
		if FrustumCullingEnabled {
			center, radius := model.WorldBoundingSphere()
			if !frustum.IntersectsSphere(center, radius) {
				continue
			}
		}

		material := model.Material
		if material == nil {
			material = DefaultMaterial
		}
		if FaceCullingEnabled && !material.DoubleSided {
			gl.Enable(gl.CULL_FACE)
			gl.CullFace(gl.BACK)
			gl.FrontFace(gl.CCW)
		} else {
			gl.Disable(gl.CULL_FACE)
		}
		if material.Alpha < 1 {
			gl.Enable(gl.BLEND)
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		} else {
			gl.Disable(gl.BLEND)
		}

		shader.Uniforms.SetMat4("model", model.WorldMatrix())
		shader.Uniforms.SetMat3("normalMatrix", model.NormalMatrix())
		shader.Uniforms.SetBool("receiveShadow", model.ReceiveShadow)
		rend.setMaterialUniforms(shader, material)

		gl.BindVertexArray(model.VAO)
		gl.DrawElements(gl.TRIANGLES, int32(len(model.Faces)), gl.UNSIGNED_INT, gl.PtrOffset(0))
	}
	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
}

// updateFrustum rebuilds the culling frustum if the camera or a model moved
// since the last frame.
func updateFrustum(camera *Camera) {
	if !frustumDirty {
		return
	}
	frustum = camera.CalculateFrustum()
	frustumDirty = false
}

// ensureShadowMap creates the shadow map at the light's size, recreating it
// when the size changes, and reports whether a shadow pass should run.
func (rend *OpenGLRenderer) ensureShadowMap(light *Light) bool {
	if !rend.Settings.EnableShadows || light == nil || !light.CastShadow {
		return false
	}
	size := shadowMapSize(light.ShadowMapSize)
	if rend.shadowMap != nil && rend.shadowMap.Size == size {
		return true
	}
	if rend.shadowMap != nil {
		rend.shadowMap.Delete()
		rend.shadowMap = nil
	}
	sm, err := rend.newShadowMap(size)
	if err != nil {
		logger.Log.Warn("Shadows disabled", zap.Int32("size", size), zap.Error(err))
		rend.Settings.EnableShadows = false
		return false
	}
	rend.shadowMap = sm
	logger.Log.Debug("Shadow map created", zap.Int32("size", size))
	return true
}

// shadowMapSize snaps a requested size to a power of two within the
// supported range; zero or less means the default.
func shadowMapSize(requested int32) int32 {
	if requested <= 0 {
		return DefaultShadowMapSize
	}
	size := int32(MinShadowMapSize)
	for size < requested && size < MaxShadowMapSize {
		size *= 2
	}
	return size
}

func (rend *OpenGLRenderer) renderShadowPass(lightSpace mgl32.Mat4) {
	rend.shadowMap.Begin()
	shader := &rend.shadowShader
	shader.Use()
	rend.currentShaderProgram = shader.program
	shader.Uniforms.SetMat4("lightSpace", lightSpace)
	for _, model := range rend.Models {
		if !model.CastShadow || model.VAO == 0 {
			continue
		}
		shader.Uniforms.SetMat4("model", model.WorldMatrix())
		gl.BindVertexArray(model.VAO)
		gl.DrawElements(gl.TRIANGLES, int32(len(model.Faces)), gl.UNSIGNED_INT, gl.PtrOffset(0))
	}
	gl.BindVertexArray(0)
	rend.shadowMap.End()
}

func (rend *OpenGLRenderer) setFrameUniforms(shader *Shader, camera *Camera, light *Light, lightSpace mgl32.Mat4, shadows bool, env *Environment) {
	u := shader.Uniforms
	u.SetMat4("viewProjection", camera.GetViewProjection())
	u.SetVec3("viewPos", camera.Position)
	u.SetMat4("lightSpace", lightSpace)
	if light != nil {
		u.SetVec3("light.toLight", light.ToLight())
		u.SetVec3("light.color", light.Color)
		u.SetFloat("light.intensity", light.Intensity)
		u.SetFloat("shadowBias", light.ShadowBias)
	} else {
		u.SetFloat("light.intensity", 0)
	}
	u.SetFloat("exposure", rend.Settings.Exposure)

	u.SetInt("baseColorMap", unitBaseColor)
	u.SetInt("normalMap", unitNormal)
	u.SetInt("roughnessMap", unitRoughness)
	u.SetInt("shadowMap", unitShadow)
	u.SetInt("environmentMap", unitEnvironment)

	u.SetBool("shadowsEnabled", shadows)
	gl.ActiveTexture(gl.TEXTURE0 + unitShadow)
	if shadows {
		gl.BindTexture(gl.TEXTURE_2D, rend.shadowMap.Texture)
	} else {
		gl.BindTexture(gl.TEXTURE_2D, rend.textures.DefaultTexture())
	}

	ibl := env != nil && rend.Settings.EnableImageBasedLighting
	u.SetBool("hasEnvironment", ibl)
	gl.ActiveTexture(gl.TEXTURE0 + unitEnvironment)
	if ibl {
		gl.BindTexture(gl.TEXTURE_2D, env.TextureID)
		u.SetFloat("environmentMaxLod", env.MaxLod)
		u.SetFloat("environmentIntensity", rend.Settings.EnvironmentIntensity*env.Intensity)
	} else {
		gl.BindTexture(gl.TEXTURE_2D, rend.textures.DefaultTexture())
	}
}

func (rend *OpenGLRenderer) setMaterialUniforms(shader *Shader, m *Material) {
	u := shader.Uniforms
	u.SetVec3("diffuseColor", mgl32.Vec3(m.DiffuseColor))
	u.SetFloat("metallic", m.Metallic)
	u.SetFloat("roughness", m.Roughness)
	u.SetFloat("alpha", m.Alpha)
	u.SetFloat("normalScale", m.NormalScale)
	u.SetBool("doubleSided", m.DoubleSided)

	rend.bindSlot(u, unitBaseColor, "hasBaseColorMap", m.Map)
	rend.bindSlot(u, unitNormal, "hasNormalMap", m.NormalMap)
	rend.bindSlot(u, unitRoughness, "hasRoughnessMap", m.RoughnessMap)
}

func (rend *OpenGLRenderer) bindSlot(u *UniformCache, unit uint32, flag string, tex *Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	if tex.Uploaded() {
		gl.BindTexture(gl.TEXTURE_2D, tex.ID)
		u.SetBool(flag, true)
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, rend.textures.DefaultTexture())
	u.SetBool(flag, false)
}

func (rend *OpenGLRenderer) Cleanup() {
	if !rend.initialized {
		return
	}
	for _, model := range rend.Models {
		rend.deleteBuffers(model)
	}
	rend.Models = nil
	rend.textures.LogStats()
	rend.textures.Clear()
	if rend.environment != nil {
		rend.environment.Delete()
	}
	if rend.shadowMap != nil {
		rend.shadowMap.Delete()
	}
	rend.sceneShader.Delete()
	rend.shadowShader.Delete()
	rend.backgroundShader.Delete()
	rend.initialized = false
	logger.Log.Info("OpenGL render cleaned up")
}
