package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Texture units shared by the scene shaders.
const (
	unitBaseColor   = 0
	unitNormal      = 1
	unitRoughness   = 2
	unitShadow      = 3
	unitEnvironment = 4
)

// =============================================================
//
//	Shaders
//
// =============================================================
type Shader struct {
	Name           string
	vertexSource   string
	fragmentSource string
	program        uint32
	isCompiled     bool
	Uniforms       *UniformCache
}

func (shader *Shader) Compile() error {
	if shader.isCompiled {
		return nil
	}
	vertex, err := GenShader(shader.vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return fmt.Errorf("%s vertex shader: %w", shader.Name, err)
	}
	fragment, err := GenShader(shader.fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertex)
		return fmt.Errorf("%s fragment shader: %w", shader.Name, err)
	}
	program, err := GenShaderProgram(vertex, fragment)
	if err != nil {
		return fmt.Errorf("%s program: %w", shader.Name, err)
	}
	shader.program = program
	shader.Uniforms = NewUniformCache(program)
	shader.isCompiled = true
	return nil
}

func (shader *Shader) Use() {
	gl.UseProgram(shader.program)
}

func (shader *Shader) Delete() {
	if shader.isCompiled {
		gl.DeleteProgram(shader.program)
		shader.isCompiled = false
	}
}

func GenShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func GenShaderProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DetachShader(program, vertexShader)
	gl.DeleteShader(vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

var sceneVertexShaderSource = `#version 410 core

layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec2 inTexCoord;
layout(location = 2) in vec3 inNormal;

uniform mat4 model;
uniform mat3 normalMatrix;
uniform mat4 viewProjection;
uniform mat4 lightSpace;

out vec2 fragTexCoord;
out vec3 fragNormal;
out vec3 fragPos;
out vec4 fragLightPos;

void main() {
    vec4 world = model * vec4(inPosition, 1.0);
    fragPos = world.xyz;
    fragNormal = normalMatrix * inNormal;
    fragTexCoord = inTexCoord;
    fragLightPos = lightSpace * world;
    gl_Position = viewProjection * world;
}
` + "\x00"

var sceneFragmentShaderSource = `#version 410 core

in vec2 fragTexCoord;
in vec3 fragNormal;
in vec3 fragPos;
in vec4 fragLightPos;

uniform sampler2D baseColorMap;
uniform sampler2D normalMap;
uniform sampler2D roughnessMap;
uniform sampler2D shadowMap;
uniform sampler2D environmentMap;

uniform bool hasBaseColorMap;
uniform bool hasNormalMap;
uniform bool hasRoughnessMap;
uniform bool hasEnvironment;
uniform bool receiveShadow;
uniform bool shadowsEnabled;
uniform bool doubleSided;

uniform vec3 diffuseColor;
uniform float metallic;
uniform float roughness;
uniform float alpha;
uniform float normalScale;
uniform float exposure;
uniform float environmentIntensity;
uniform float environmentMaxLod;
uniform float shadowBias;

uniform struct Light {
    vec3 toLight;
    vec3 color;
    float intensity;
} light;
uniform vec3 viewPos;

out vec4 FragColor;

const float PI = 3.14159265359;

vec2 equirectUV(vec3 dir) {
    dir = normalize(dir);
    float u = atan(dir.z, dir.x) / (2.0 * PI) + 0.5;
    float v = asin(clamp(dir.y, -1.0, 1.0)) / PI + 0.5;
    return vec2(u, v);
}

// Cotangent-frame normal mapping; the mesh carries no tangents.
vec3 perturbNormal(vec3 N, vec3 p, vec2 uv, vec3 mapN) {
    vec3 dp1 = dFdx(p);
    vec3 dp2 = dFdy(p);
    vec2 duv1 = dFdx(uv);
    vec2 duv2 = dFdy(uv);
    vec3 dp2perp = cross(dp2, N);
    vec3 dp1perp = cross(N, dp1);
    vec3 T = dp2perp * duv1.x + dp1perp * duv2.x;
    vec3 B = dp2perp * duv1.y + dp1perp * duv2.y;
    float det = max(dot(T, T), dot(B, B));
    if (det == 0.0) {
        return N;
    }
    float invmax = inversesqrt(det);
    return normalize(mat3(T * invmax, B * invmax, N) * mapN);
}

float shadowFactor(vec3 N, vec3 L) {
    vec3 proj = fragLightPos.xyz / fragLightPos.w * 0.5 + 0.5;
    if (proj.z > 1.0 || proj.x < 0.0 || proj.x > 1.0 || proj.y < 0.0 || proj.y > 1.0) {
        return 1.0;
    }
    float bias = max(shadowBias * 10.0 * (1.0 - dot(N, L)), shadowBias);
    vec2 texel = 1.0 / vec2(textureSize(shadowMap, 0));
    float lit = 0.0;
    for (int x = -1; x <= 1; x++) {
        for (int y = -1; y <= 1; y++) {
            float depth = texture(shadowMap, proj.xy + vec2(x, y) * texel).r;
            lit += (proj.z - bias > depth) ? 0.0 : 1.0;
        }
    }
    return lit / 9.0;
}

float distributionGGX(float NdotH, float a) {
    float a2 = a * a;
    float d = NdotH * NdotH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

float geometrySmith(float NdotV, float NdotL, float a) {
    float k = (a + 1.0) * (a + 1.0) / 8.0;
    float gv = NdotV / (NdotV * (1.0 - k) + k);
    float gl = NdotL / (NdotL * (1.0 - k) + k);
    return gv * gl;
}

vec3 fresnelSchlick(float cosTheta, vec3 F0, float rough) {
    return F0 + (max(vec3(1.0 - rough), F0) - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

void main() {
    vec4 base = vec4(diffuseColor, alpha);
    if (hasBaseColorMap) {
        vec4 texel = texture(baseColorMap, fragTexCoord);
        base *= vec4(pow(texel.rgb, vec3(2.2)), texel.a);
    }

    float rough = roughness;
    if (hasRoughnessMap) {
        rough *= texture(roughnessMap, fragTexCoord).g;
    }
    rough = clamp(rough, 0.04, 1.0);

    vec3 N = normalize(fragNormal);
    if (doubleSided && !gl_FrontFacing) {
        N = -N;
    }
    if (hasNormalMap) {
        vec3 mapN = texture(normalMap, fragTexCoord).xyz * 2.0 - 1.0;
        mapN.xy *= normalScale;
        N = perturbNormal(N, fragPos, fragTexCoord, normalize(mapN));
    }

    vec3 V = normalize(viewPos - fragPos);
    vec3 L = normalize(light.toLight);
    vec3 H = normalize(V + L);
    float NdotL = max(dot(N, L), 0.0);
    float NdotV = max(dot(N, V), 1e-4);
    float NdotH = max(dot(N, H), 0.0);

    vec3 albedo = base.rgb;
    vec3 F0 = mix(vec3(0.04), albedo, metallic);
    float a = rough * rough;

    vec3 F = fresnelSchlick(max(dot(H, V), 0.0), F0, 0.0);
    vec3 specular = distributionGGX(NdotH, a) * geometrySmith(NdotV, NdotL, rough) * F / max(4.0 * NdotV * NdotL, 1e-4);
    vec3 kd = (1.0 - F) * (1.0 - metallic);
    vec3 radiance = light.color * light.intensity;

    float shadow = 1.0;
    if (shadowsEnabled && receiveShadow) {
        shadow = shadowFactor(N, L);
    }
    vec3 color = (kd * albedo / PI + specular) * radiance * NdotL * shadow;

    if (hasEnvironment) {
        vec3 Fe = fresnelSchlick(NdotV, F0, rough);
        vec3 kde = (1.0 - Fe) * (1.0 - metallic);
        vec3 irradiance = textureLod(environmentMap, equirectUV(N), environmentMaxLod).rgb;
        vec3 R = reflect(-V, N);
        vec3 prefiltered = textureLod(environmentMap, equirectUV(R), rough * environmentMaxLod).rgb;
        color += (kde * albedo * irradiance + prefiltered * Fe) * environmentIntensity;
    } else {
        color += 0.03 * albedo;
    }

    color *= exposure;
    FragColor = vec4(pow(clamp(color, 0.0, 1.0), vec3(1.0 / 2.2)), base.a);
}
` + "\x00"

var shadowVertexShaderSource = `#version 410 core

layout(location = 0) in vec3 inPosition;

uniform mat4 model;
uniform mat4 lightSpace;

void main() {
    gl_Position = lightSpace * model * vec4(inPosition, 1.0);
}
` + "\x00"

var shadowFragmentShaderSource = `#version 410 core

void main() {
}
` + "\x00"

var backgroundVertexShaderSource = `#version 410 core

out vec2 ndc;

void main() {
    // Full-screen triangle from the vertex index; no buffers needed.
    vec2 pos = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2) * 2.0 - 1.0;
    ndc = pos;
    gl_Position = vec4(pos, 1.0, 1.0);
}
` + "\x00"

var backgroundFragmentShaderSource = `#version 410 core

in vec2 ndc;

uniform mat4 inverseViewProjection;
uniform sampler2D environmentMap;
uniform float exposure;

out vec4 FragColor;

const float PI = 3.14159265359;

void main() {
    vec4 far = inverseViewProjection * vec4(ndc, 1.0, 1.0);
    vec4 near = inverseViewProjection * vec4(ndc, -1.0, 1.0);
    vec3 dir = normalize(far.xyz / far.w - near.xyz / near.w);
    float u = atan(dir.z, dir.x) / (2.0 * PI) + 0.5;
    float v = asin(clamp(dir.y, -1.0, 1.0)) / PI + 0.5;
    vec3 color = textureLod(environmentMap, vec2(u, v), 0.0).rgb * exposure;
    FragColor = vec4(pow(clamp(color, 0.0, 1.0), vec3(1.0 / 2.2)), 1.0);
}
` + "\x00"

func InitSceneShader() Shader {
	return Shader{
		Name:           "scene",
		vertexSource:   sceneVertexShaderSource,
		fragmentSource: sceneFragmentShaderSource,
	}
}

func InitShadowShader() Shader {
	return Shader{
		Name:           "shadow",
		vertexSource:   shadowVertexShaderSource,
		fragmentSource: shadowFragmentShaderSource,
	}
}

func InitBackgroundShader() Shader {
	return Shader{
		Name:           "background",
		vertexSource:   backgroundVertexShaderSource,
		fragmentSource: backgroundFragmentShaderSource,
	}
}
