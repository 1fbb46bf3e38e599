package renderer

const sceneVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform mat3 uNormalMatrix;
uniform mat4 uLightSpace;
uniform vec2 uRepeat;

out vec3 vWorldPos;
out vec3 vNormal;
out vec2 vTexCoord;
out vec4 vLightSpacePos;

void main() {
	vec4 world = uModel * vec4(aPos, 1.0);
	vWorldPos = world.xyz;
	vNormal = normalize(uNormalMatrix * aNormal);
	vTexCoord = aTexCoord * uRepeat;
	vLightSpacePos = uLightSpace * world;
	gl_Position = uProjection * uView * world;
}
`

const sceneFragmentShader = `
#version 410 core

#define MAX_LIGHTS 8

uniform vec4 uColor;
uniform bool uHasTexture;
uniform sampler2D uTexture;
uniform float uSpecular;
uniform float uShininess;
uniform vec3 uEye;
uniform vec3 uAmbient;

uniform int uLightCount;
uniform int uLightType[MAX_LIGHTS];
uniform vec3 uLightPos[MAX_LIGHTS];
uniform vec3 uLightDir[MAX_LIGHTS];
uniform vec3 uLightColor[MAX_LIGHTS];
uniform vec2 uLightCone[MAX_LIGHTS];
uniform vec2 uLightRange[MAX_LIGHTS];

uniform int uShadowLight;
uniform bool uReceiveShadow;
uniform sampler2DShadow uShadowMap;

in vec3 vWorldPos;
in vec3 vNormal;
in vec2 vTexCoord;
in vec4 vLightSpacePos;

out vec4 FragColor;

float shadowFactor() {
	vec3 p = vLightSpacePos.xyz / vLightSpacePos.w * 0.5 + 0.5;
	if (p.z > 1.0) {
		return 1.0;
	}
	float texel = 1.0 / float(textureSize(uShadowMap, 0).x);
	float sum = 0.0;
	for (int x = -1; x <= 1; x++) {
		for (int y = -1; y <= 1; y++) {
			sum += texture(uShadowMap, vec3(p.xy + vec2(x, y) * texel, p.z - 0.002));
		}
	}
	return sum / 9.0;
}

void main() {
	vec4 base = uColor;
	if (uHasTexture) {
		base *= texture(uTexture, vTexCoord);
	}

	vec3 n = normalize(vNormal);
	if (!gl_FrontFacing) {
		n = -n;
	}
	vec3 view = normalize(uEye - vWorldPos);
	vec3 color = uAmbient * base.rgb;

	for (int i = 0; i < uLightCount; i++) {
		vec3 l = -uLightDir[i];
		float atten = 1.0;
		if (uLightType[i] == 1) {
			vec3 toLight = uLightPos[i] - vWorldPos;
			float d = length(toLight);
			l = toLight / d;
			float cosAngle = dot(-l, uLightDir[i]);
			atten = smoothstep(uLightCone[i].y, uLightCone[i].x, cosAngle);
			if (uLightRange[i].x > 0.0) {
				atten *= pow(clamp(1.0 - d / uLightRange[i].x, 0.0, 1.0), max(uLightRange[i].y, 1.0));
			}
		}
		if (i == uShadowLight && uReceiveShadow) {
			atten *= shadowFactor();
		}
		float diff = max(dot(n, l), 0.0);
		vec3 h = normalize(l + view);
		float spec = pow(max(dot(n, h), 0.0), uShininess) * uSpecular;
		color += atten * uLightColor[i] * (diff * base.rgb + spec);
	}

	FragColor = vec4(color, base.a);
}
`

const depthVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uLightSpace;
uniform mat4 uModel;

void main() {
	gl_Position = uLightSpace * uModel * vec4(aPos, 1.0);
}
`

const depthFragmentShader = `
#version 410 core

void main() {
}
`
